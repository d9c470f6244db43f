package model

import "errors"

// Reserved annotation names.
const (
	POSName   = "pos"
	LemmaName = "lemma"
)

// ErrReservedName is returned when renaming a POS or Lemma annotation.
var ErrReservedName = errors.New("annotation name is reserved")

// Kind distinguishes generic annotations from the reserved kinds.
type Kind int

// Annotation kinds.
const (
	KindAny Kind = iota
	KindPOS
	KindLemma
)

// String returns the kind label used in logs.
func (k Kind) String() string {
	switch k {
	case KindPOS:
		return "pos"
	case KindLemma:
		return "lemma"
	default:
		return "any"
	}
}

// Annotation is a name/value pair attached to a Document, Token or Span.
// The value may be empty but is never absent.
type Annotation struct {
	kind  Kind
	name  string
	value string
}

// NewAnnotation creates an annotation. The reserved names "pos" and "lemma"
// produce the specialized kinds.
func NewAnnotation(name, value string) *Annotation {
	switch name {
	case POSName:
		return NewPOS(value)
	case LemmaName:
		return NewLemma(value)
	}
	return &Annotation{kind: KindAny, name: name, value: value}
}

// NewPOS creates a part-of-speech annotation.
func NewPOS(value string) *Annotation {
	return &Annotation{kind: KindPOS, name: POSName, value: value}
}

// NewLemma creates a lemma annotation.
func NewLemma(value string) *Annotation {
	return &Annotation{kind: KindLemma, name: LemmaName, value: value}
}

// Kind returns the annotation kind.
func (a *Annotation) Kind() Kind { return a.kind }

// Name returns the annotation name.
func (a *Annotation) Name() string { return a.name }

// Value returns the annotation value.
func (a *Annotation) Value() string { return a.value }

// SetValue replaces the value.
func (a *Annotation) SetValue(v string) { a.value = v }

// SetName renames a generic annotation. POS and Lemma names are fixed.
func (a *Annotation) SetName(name string) error {
	if a.kind != KindAny {
		return ErrReservedName
	}
	a.name = name
	return nil
}

// Equal reports whether both annotations have the same kind, name and value.
func (a *Annotation) Equal(other *Annotation) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.kind == other.kind && a.name == other.name && a.value == other.value
}

// annotated is embedded by every annotatable element.
type annotated struct {
	annotations []*Annotation
}

// Annotations returns annotations in insertion order.
func (n *annotated) Annotations() []*Annotation {
	return n.annotations
}

// AddAnnotation appends an annotation. Nil is ignored.
func (n *annotated) AddAnnotation(a *Annotation) {
	if a == nil {
		return
	}
	n.annotations = append(n.annotations, a)
}

// Annotation returns the first annotation with the given name.
func (n *annotated) Annotation(name string) (*Annotation, bool) {
	for _, a := range n.annotations {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

func (n *annotated) firstOfKind(k Kind) *Annotation {
	for _, a := range n.annotations {
		if a.kind == k {
			return a
		}
	}
	return nil
}

func annotationsEqual(a, b []*Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
