package diag

import (
	"reflect"
	"testing"
)

func TestListFilters(t *testing.T) {
	l := List{
		{Kind: TooFewColumns, Line: 2, Row: 2, Message: "2 fields"},
		{Kind: UnmatchedEndTag, Line: 4, Message: "</np>"},
		{Kind: TooFewColumns, Line: 3, Row: 3, Message: "2 fields"},
	}

	if got := len(l.OfKind(TooFewColumns)); got != 2 {
		t.Errorf("len(OfKind) = %d, want 2", got)
	}
	if got := l.Rows(TooFewColumns); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Rows() = %v, want [2 3]", got)
	}
	if got := l.Rows(TooManyColumns); got != nil {
		t.Errorf("Rows(TooManyColumns) = %v, want nil", got)
	}
	if got := l.Count()[UnmatchedEndTag]; got != 1 {
		t.Errorf("Count()[UnmatchedEndTag] = %d, want 1", got)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: EmptySpan, Line: 7, Message: "span np has no tokens"}
	if got, want := d.String(), "line 7: empty-span: span np has no tokens"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	d = Diagnostic{Kind: NoDocuments, Message: "input has no documents"}
	if got, want := d.String(), "no-documents: input has no documents"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
