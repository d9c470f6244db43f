package graph

import (
	"regexp"
	"sort"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
)

// DefaultSeparator is inserted between token texts in the primary text.
const DefaultSeparator = " "

// Options controls the mapping. The zero value joins tokens without a
// separator; use DefaultOptions for the usual single space.
type Options struct {
	// Separator is placed between token texts. Empty concatenates them.
	Separator string
	// PrefixSpanAnnotations names span annotations "<span>_<name>" on export.
	PrefixSpanAnnotations bool
	// ReplaceGenericSpanNames renames spans called like "span12" or
	// "sSpan12" after their first annotation on import.
	ReplaceGenericSpanNames bool
}

// DefaultOptions returns the mapping defaults.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator}
}

var genericSpanName = regexp.MustCompile(`^s?[Ss]pan\d+$`)

// Export writes doc into b.
func Export(doc *model.Document, b Builder, opts Options) error {
	if doc == nil {
		return cerrors.NewConfig("document", "no document given")
	}

	tokens := doc.Tokens()
	starts := make([]int, len(tokens))
	var text []byte
	for i, tok := range tokens {
		if i > 0 {
			text = append(text, opts.Separator...)
		}
		starts[i] = len(text)
		text = append(text, tok.Text()...)
	}
	if err := b.SetText(string(text)); err != nil {
		return cerrors.Wrap(err, "set text")
	}

	for _, a := range doc.Annotations() {
		if err := b.AddAnnotation(DocumentNode, a.Name(), a.Value()); err != nil {
			return cerrors.Wrap(err, "document annotation")
		}
	}

	ids := make(map[*model.Token]NodeID, len(tokens))
	for i, tok := range tokens {
		id, err := b.CreateToken()
		if err != nil {
			return cerrors.Wrap(err, "create token")
		}
		ids[tok] = id
		if err := b.AddTextualRelation(id, starts[i], starts[i]+len(tok.Text())); err != nil {
			return cerrors.Wrapf(err, "anchor token %d", i)
		}
		for _, a := range tok.Annotations() {
			if err := b.AddAnnotation(id, a.Name(), a.Value()); err != nil {
				return cerrors.Wrapf(err, "annotate token %d", i)
			}
		}
	}

	for _, s := range doc.Spans() {
		id, err := b.CreateSpan(s.Name())
		if err != nil {
			return cerrors.Wrapf(err, "create span %s", s.Name())
		}
		for _, tok := range s.Tokens() {
			tid, ok := ids[tok]
			if !ok {
				return cerrors.NewNotFound("span token", s.Name())
			}
			if err := b.AddSpanningRelation(id, tid); err != nil {
				return cerrors.Wrapf(err, "span %s", s.Name())
			}
		}
		for _, a := range s.Annotations() {
			name := a.Name()
			if opts.PrefixSpanAnnotations {
				name = s.Name() + "_" + name
			}
			if err := b.AddAnnotation(id, name, a.Value()); err != nil {
				return cerrors.Wrapf(err, "annotate span %s", s.Name())
			}
		}
	}
	return nil
}

// Import rebuilds a document from m. Tokens are ordered by their text
// offset; unanchored tokens keep creation order after the anchored ones.
func Import(m *Memory, opts Options) (*model.Document, error) {
	if m == nil {
		return nil, cerrors.NewConfig("graph", "no graph given")
	}
	doc := model.NewDocument(m.Name)
	if root := m.Node(DocumentNode); root != nil {
		for _, a := range root.Annotations {
			doc.AddAnnotation(model.NewAnnotation(a.Name, a.Value))
		}
	}

	nodes := m.Tokens()
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Anchored != nodes[j].Anchored {
			return nodes[i].Anchored
		}
		return nodes[i].Anchored && nodes[i].Start < nodes[j].Start
	})
	tokens := make(map[NodeID]*model.Token, len(nodes))
	for _, n := range nodes {
		tok := doc.CreateToken(m.TokenText(n))
		for _, a := range n.Annotations {
			tok.AddAnnotation(model.NewAnnotation(a.Name, a.Value))
		}
		tokens[n.ID] = tok
	}

	for _, n := range m.Spans() {
		span := doc.CreateSpan(n.Name)
		for _, a := range n.Annotations {
			span.AddAnnotation(model.NewAnnotation(a.Name, a.Value))
		}
		for _, id := range n.Tokens {
			tok, ok := tokens[id]
			if !ok {
				return nil, cerrors.NewNotFound("token node", n.Name)
			}
			span.AddToken(tok)
		}
		if opts.ReplaceGenericSpanNames && genericSpanName.MatchString(n.Name) && len(n.Annotations) > 0 {
			span.SetName(n.Annotations[0].Name)
		}
	}
	return doc, nil
}
