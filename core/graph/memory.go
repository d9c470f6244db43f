package graph

import (
	"fmt"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
)

// Annotation is a name/value pair on a node.
type Annotation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node is one node of a Memory graph.
type Node struct {
	ID          NodeID       `json:"id"`
	Kind        NodeKind     `json:"kind"`
	Name        string       `json:"name,omitempty"`
	Start       int          `json:"start"`
	End         int          `json:"end"`
	Anchored    bool         `json:"anchored,omitempty"`
	Tokens      []NodeID     `json:"tokens,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Memory is an in-memory annotation graph.
type Memory struct {
	Name  string  `json:"name"`
	Text  string  `json:"text"`
	Nodes []*Node `json:"nodes"`
}

// NewMemory creates a graph holding only the document node.
func NewMemory(name string) *Memory {
	return &Memory{
		Name:  name,
		Nodes: []*Node{{ID: DocumentNode, Kind: KindDocument}},
	}
}

// SetText implements Builder.
func (m *Memory) SetText(text string) error {
	m.Text = text
	return nil
}

// CreateToken implements Builder.
func (m *Memory) CreateToken() (NodeID, error) {
	return m.add(&Node{Kind: KindToken}), nil
}

// AddTextualRelation implements Builder.
func (m *Memory) AddTextualRelation(token NodeID, start, end int) error {
	n, err := m.node(token, KindToken)
	if err != nil {
		return err
	}
	if start < 0 || end < start || end > len(m.Text) {
		return fmt.Errorf("%w: range [%d,%d) outside text of length %d",
			cerrors.ErrInvalidInput, start, end, len(m.Text))
	}
	n.Start, n.End, n.Anchored = start, end, true
	return nil
}

// CreateSpan implements Builder.
func (m *Memory) CreateSpan(name string) (NodeID, error) {
	return m.add(&Node{Kind: KindSpan, Name: name}), nil
}

// AddSpanningRelation implements Builder.
func (m *Memory) AddSpanningRelation(span, token NodeID) error {
	s, err := m.node(span, KindSpan)
	if err != nil {
		return err
	}
	if _, err := m.node(token, KindToken); err != nil {
		return err
	}
	s.Tokens = append(s.Tokens, token)
	return nil
}

// AddAnnotation implements Builder.
func (m *Memory) AddAnnotation(node NodeID, name, value string) error {
	n, err := m.node(node, "")
	if err != nil {
		return err
	}
	n.Annotations = append(n.Annotations, Annotation{Name: name, Value: value})
	return nil
}

// Node returns the node with the given id, or nil.
func (m *Memory) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[id]
}

// Tokens returns token nodes in creation order.
func (m *Memory) Tokens() []*Node { return m.ofKind(KindToken) }

// Spans returns span nodes in creation order.
func (m *Memory) Spans() []*Node { return m.ofKind(KindSpan) }

// TokenText returns the slice of the primary text a token is anchored to.
func (m *Memory) TokenText(n *Node) string {
	if n == nil || !n.Anchored || n.End > len(m.Text) {
		return ""
	}
	return m.Text[n.Start:n.End]
}

func (m *Memory) add(n *Node) NodeID {
	n.ID = NodeID(len(m.Nodes))
	m.Nodes = append(m.Nodes, n)
	return n.ID
}

func (m *Memory) node(id NodeID, kind NodeKind) (*Node, error) {
	n := m.Node(id)
	if n == nil {
		return nil, cerrors.NewNotFound("node", fmt.Sprint(id))
	}
	if kind != "" && n.Kind != kind {
		return nil, fmt.Errorf("%w: node %d is a %s, not a %s", cerrors.ErrInvalidInput, id, n.Kind, kind)
	}
	return n, nil
}

func (m *Memory) ofKind(kind NodeKind) []*Node {
	var out []*Node
	for _, n := range m.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
