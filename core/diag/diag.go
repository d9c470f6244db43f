// Package diag records the structural warnings produced while reading or
// writing the tabular format. Warnings never abort a conversion.
package diag

import "fmt"

// Kind classifies a structural warning.
type Kind string

// Warning kinds.
const (
	TooManyColumns     Kind = "too-many-columns"
	TooFewColumns      Kind = "too-few-columns"
	UnmatchedEndTag    Kind = "unmatched-end-tag"
	EmptySpan          Kind = "empty-span"
	UnclosedSpan       Kind = "unclosed-span"
	MissingDocumentEnd Kind = "missing-document-end"
	UnexpectedDocEnd   Kind = "unexpected-document-end"
	NoDocuments        Kind = "no-documents"
	DuplicateOpenSpan  Kind = "duplicate-open-span"
	TagValueWhitespace Kind = "tag-value-whitespace"
)

// Diagnostic is one structural warning. Line is the 1-based input line (0
// when not tied to a line); Row is the 1-based data-row index for column
// count warnings.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Row     int    `json:"row,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// OfKind returns the diagnostics of kind k in order.
func (l List) OfKind(k Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Rows returns the Row fields of the diagnostics of kind k.
func (l List) Rows(k Kind) []int {
	var rows []int
	for _, d := range l.OfKind(k) {
		rows = append(rows, d.Row)
	}
	return rows
}

// Count returns per-kind totals.
func (l List) Count() map[Kind]int {
	m := make(map[Kind]int)
	for _, d := range l {
		m[d.Kind]++
	}
	return m
}
