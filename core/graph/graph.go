// Package graph maps documents onto a stand-off annotation graph: one
// primary text, token nodes anchored to byte ranges of that text, span nodes
// grouping tokens, and annotations on any node.
//
// Builder is the write side used by Export. Memory is an in-memory graph
// that implements Builder and is read by Import; stores persist a graph by
// implementing Builder themselves and loading back into a Memory.
package graph

// NodeID identifies a node within one graph.
type NodeID int

// DocumentNode is the implicit root node carrying document annotations.
const DocumentNode NodeID = 0

// NodeKind classifies graph nodes.
type NodeKind string

// Node kinds.
const (
	KindDocument NodeKind = "document"
	KindToken    NodeKind = "token"
	KindSpan     NodeKind = "span"
)

// Builder receives a graph one element at a time.
type Builder interface {
	// SetText sets the primary text tokens are anchored to.
	SetText(text string) error

	// CreateToken adds a token node.
	CreateToken() (NodeID, error)

	// AddTextualRelation anchors a token to text[start:end].
	AddTextualRelation(token NodeID, start, end int) error

	// CreateSpan adds a named span node.
	CreateSpan(name string) (NodeID, error)

	// AddSpanningRelation adds a token to a span.
	AddSpanningRelation(span, token NodeID) error

	// AddAnnotation attaches name=value to any node, DocumentNode included.
	AddAnnotation(node NodeID, name, value string) error
}
