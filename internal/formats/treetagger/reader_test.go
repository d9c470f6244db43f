package treetagger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ttconv/core/columns"
	"github.com/FocuswithJustin/ttconv/core/diag"
	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func readString(t *testing.T, opts Options, name, input string) ([]*model.Document, diag.List) {
	t.Helper()
	r := NewReader(opts)
	docs, err := r.Read(strings.NewReader(input), name)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return docs, r.Diagnostics()
}

type annoPair struct {
	kind  model.Kind
	name  string
	value string
}

func pairs(annos []*model.Annotation) []annoPair {
	out := make([]annoPair, 0, len(annos))
	for _, a := range annos {
		out = append(out, annoPair{a.Kind(), a.Name(), a.Value()})
	}
	return out
}

func TestReadColumnFallback(t *testing.T) {
	docs, _ := readString(t, quietOptions(), "fallback.tt", "TreeTagger\tNP\tTreeTagger\textra1\textra2\n")
	if len(docs) != 1 || len(docs[0].Tokens()) != 1 {
		t.Fatalf("got %d documents", len(docs))
	}
	tok := docs[0].Tokens()[0]
	if tok.Text() != "TreeTagger" {
		t.Errorf("Text() = %q", tok.Text())
	}
	want := []annoPair{
		{model.KindPOS, "pos", "NP"},
		{model.KindLemma, "lemma", "TreeTagger"},
		{model.KindAny, columns.Fallback, "extra1"},
		{model.KindAny, columns.Fallback, "extra2"},
	}
	if got := pairs(tok.Annotations()); !reflect.DeepEqual(got, want) {
		t.Errorf("annotations = %v, want %v", got, want)
	}
	if tok.POS().Value() != "NP" || tok.Lemma().Value() != "TreeTagger" {
		t.Error("POS/Lemma accessors do not match")
	}
}

func TestReadRowCountDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFew  []int
		wantMany []int
	}{
		{
			name:    "too few",
			input:   "a\tA\ta\nb\tB\nc\tC\nd\tD\td\n",
			wantFew: []int{2, 3},
		},
		{
			name:     "too many",
			input:    "a\tA\ta\nb\tB\tb\tx\nc\tC\tc\ty\nd\tD\td\n",
			wantMany: []int{2, 3},
		},
		{
			name:  "consistent",
			input: "a\tA\ta\nb\tB\tb\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := readString(t, quietOptions(), "rows.tt", tt.input)
			if got := diags.Rows(diag.TooFewColumns); !reflect.DeepEqual(got, tt.wantFew) {
				t.Errorf("too-few rows = %v, want %v", got, tt.wantFew)
			}
			if got := diags.Rows(diag.TooManyColumns); !reflect.DeepEqual(got, tt.wantMany) {
				t.Errorf("too-many rows = %v, want %v", got, tt.wantMany)
			}
		})
	}
}

func TestReadRowCountsIgnoreTags(t *testing.T) {
	input := "<s>\na\tA\ta\n</s>\n<s>\nb\tB\n</s>\n"
	_, diags := readString(t, quietOptions(), "rows.tt", input)
	if got := diags.Rows(diag.TooFewColumns); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("too-few rows = %v, want [2]", got)
	}
	if got := diags.OfKind(diag.TooFewColumns)[0].Line; got != 5 {
		t.Errorf("Line = %d, want 5", got)
	}
}

func TestReadMultiDocumentNaming(t *testing.T) {
	input := `<meta lang="en">
This	DT	this
</meta>
<meta lang="de">
Das	ART	die
</meta>
`
	docs, diags := readString(t, quietOptions(), "corpus/englishGerman.tt", input)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	for i, want := range []struct{ name, lang string }{
		{"englishGerman_0", "en"},
		{"englishGerman_1", "de"},
	} {
		if docs[i].Name() != want.name {
			t.Errorf("docs[%d].Name() = %q, want %q", i, docs[i].Name(), want.name)
		}
		a, ok := docs[i].Annotation("lang")
		if !ok || a.Value() != want.lang {
			t.Errorf("docs[%d] lang = %v, want %s", i, a, want.lang)
		}
	}
}

func TestReadSingleDocumentNaming(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"doc1.tt", "doc1"},
		{"/data/doc1.tagged.tt", "doc1"},
		{"doc1", "doc1"},
		{"doc1.tt.gz", "doc1"},
	}
	for _, tt := range tests {
		docs, _ := readString(t, quietOptions(), tt.name, "<meta>\nHaus\tNN\tHaus\n</meta>\n")
		if len(docs) != 1 {
			t.Fatalf("Read(%q) returned %d documents", tt.name, len(docs))
		}
		if docs[0].Name() != tt.want {
			t.Errorf("Read(%q) name = %q, want %q", tt.name, docs[0].Name(), tt.want)
		}
	}
}

func TestReadUnmatchedEndTag(t *testing.T) {
	docs, diags := readString(t, quietOptions(), "doc.tt", "Das\tART\tdie\nHaus\tNN\tHaus\n</np>\n")
	if len(docs) != 1 || len(docs[0].Tokens()) != 2 {
		t.Fatalf("document should survive an unmatched end tag")
	}
	if len(docs[0].Spans()) != 0 {
		t.Errorf("no span should be created, got %d", len(docs[0].Spans()))
	}
	if n := len(diags.OfKind(diag.UnmatchedEndTag)); n != 1 {
		t.Errorf("unmatched-end-tag count = %d, want 1", n)
	}
}

func TestReadUnclosedSpan(t *testing.T) {
	input := "Der\tART\tdie\n<np>\nalte\tADJA\talt\nMann\tNN\tMann\n"
	docs, diags := readString(t, quietOptions(), "doc.tt", input)
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	doc := docs[0]
	if len(doc.Spans()) != 0 {
		t.Errorf("unclosed span should be removed, got %d spans", len(doc.Spans()))
	}
	for _, tok := range doc.Tokens() {
		if len(tok.Spans()) != 0 {
			t.Errorf("token %q still references a span", tok.Text())
		}
	}
	if n := len(diags.OfKind(diag.UnclosedSpan)); n != 1 {
		t.Errorf("unclosed-span count = %d, want 1", n)
	}
}

func TestReadUnclosedSpanInsideMeta(t *testing.T) {
	input := "<meta>\n<s>\n<np>\na\t\t\n</s>\nb\t\t\n</meta>\n"
	docs, diags := readString(t, quietOptions(), "doc.tt", input)
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	spans := docs[0].Spans()
	if len(spans) != 1 || spans[0].Name() != "s" || spans[0].Len() != 1 {
		t.Fatalf("spans = %v, want only <s> over one token", spans)
	}
	if n := len(diags.OfKind(diag.UnclosedSpan)); n != 1 {
		t.Errorf("unclosed-span count = %d, want 1", n)
	}
}

func TestReadUnclosedDocumentDiscarded(t *testing.T) {
	docs, diags := readString(t, quietOptions(), "doc.tt", "<meta lang=\"de\">\nDas\tART\tdie\n")
	if docs == nil || len(docs) != 0 {
		t.Fatalf("docs = %v, want empty non-nil slice", docs)
	}
	if n := len(diags.OfKind(diag.MissingDocumentEnd)); n != 1 {
		t.Errorf("missing-document-end count = %d, want 1", n)
	}
	if n := len(diags.OfKind(diag.NoDocuments)); n != 1 {
		t.Errorf("no-documents count = %d, want 1", n)
	}
}

func TestReadMetaRestartsDocument(t *testing.T) {
	input := "<meta n=\"1\">\na\t\t\n<meta n=\"2\">\nb\t\t\n</meta>\n"
	docs, diags := readString(t, quietOptions(), "doc.tt", input)
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if n := len(diags.OfKind(diag.MissingDocumentEnd)); n != 1 {
		t.Errorf("missing-document-end count = %d, want 1", n)
	}
}

func TestReadImplicitThenExplicitDocument(t *testing.T) {
	input := "a\t\t\n<meta>\nb\t\t\n</meta>\n"
	docs, diags := readString(t, quietOptions(), "mixed.tt", input)
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if docs[0].Name() != "mixed_0" || docs[1].Name() != "mixed_1" {
		t.Errorf("names = %q, %q", docs[0].Name(), docs[1].Name())
	}
}

func TestReadUnexpectedDocumentEnd(t *testing.T) {
	_, diags := readString(t, quietOptions(), "doc.tt", "</meta>\na\t\t\n")
	if n := len(diags.OfKind(diag.UnexpectedDocEnd)); n != 1 {
		t.Errorf("unexpected-document-end count = %d, want 1", n)
	}
}

func TestReadLooselyNestedSpans(t *testing.T) {
	input := "<a>\n<b>\nx\t\t\n</a>\ny\t\t\n</b>\n"
	docs, diags := readString(t, quietOptions(), "doc.tt", input)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	spans := docs[0].Spans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "a" || spans[0].Len() != 1 {
		t.Errorf("<a> covers %d tokens, want 1", spans[0].Len())
	}
	if spans[1].Name() != "b" || spans[1].Len() != 2 {
		t.Errorf("<b> covers %d tokens, want 2", spans[1].Len())
	}
}

func TestReadEndTagCaseInsensitive(t *testing.T) {
	docs, diags := readString(t, quietOptions(), "doc.tt", "<META>\n<NP>\nx\t\t\n</np>\n</Meta>\n")
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(docs) != 1 || len(docs[0].Spans()) != 1 {
		t.Fatalf("want one document with one span")
	}
	if got := docs[0].Spans()[0].Name(); got != "NP" {
		t.Errorf("span name = %q, want NP", got)
	}
}

func TestReadEmptySpan(t *testing.T) {
	docs, diags := readString(t, quietOptions(), "doc.tt", "<np>\n</np>\nx\t\t\n")
	if n := len(diags.OfKind(diag.EmptySpan)); n != 1 {
		t.Errorf("empty-span count = %d, want 1", n)
	}
	if len(docs[0].Spans()) != 0 {
		t.Errorf("empty span should be dropped")
	}
}

func TestReadDuplicateOpenSpan(t *testing.T) {
	_, diags := readString(t, quietOptions(), "doc.tt", "<np>\n<np>\nx\t\t\n</np>\n</np>\n")
	if n := len(diags.OfKind(diag.DuplicateOpenSpan)); n != 1 {
		t.Errorf("duplicate-open-span count = %d, want 1", n)
	}
}

func TestReadSpanTokensAndAttributes(t *testing.T) {
	input := "<s id=\"1\">\n<np case='nom' note=\"a &amp; b\">\nDas\tART\tdie\nHaus\tNN\tHaus\n</np>\nsteht\tVVFIN\tstehen\n</s>\n"
	docs, _ := readString(t, quietOptions(), "doc.tt", input)
	doc := docs[0]
	s, np := doc.Spans()[0], doc.Spans()[1]
	if s.Len() != 3 || np.Len() != 2 {
		t.Errorf("span sizes = %d, %d, want 3, 2", s.Len(), np.Len())
	}
	want := []annoPair{
		{model.KindAny, "case", "nom"},
		{model.KindAny, "note", "a & b"},
	}
	if got := pairs(np.Annotations()); !reflect.DeepEqual(got, want) {
		t.Errorf("np annotations = %v, want %v", got, want)
	}
	// Tokens join open spans innermost first.
	first := doc.Tokens()[0]
	if spans := first.Spans(); len(spans) != 2 || spans[0] != np || spans[1] != s {
		t.Errorf("token spans out of order")
	}
}

func TestReadSkipsBOMBlankAndInstructions(t *testing.T) {
	input := "\uFEFF<?xml version=\"1.0\"?>\n\n   \nDas\tART\tdie\r\n"
	docs, diags := readString(t, quietOptions(), "doc.tt", input)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	tok := docs[0].Tokens()[0]
	if tok.Text() != "Das" || tok.Lemma().Value() != "die" {
		t.Errorf("token = %q/%q", tok.Text(), tok.Lemma().Value())
	}
	if tok.Seq() != 4 {
		t.Errorf("Seq() = %d, want input line 4", tok.Seq())
	}
}

func TestReadTagLikeRowIsData(t *testing.T) {
	docs, _ := readString(t, quietOptions(), "doc.tt", "<\t$(\t<\n<unclosed\n")
	toks := docs[0].Tokens()
	if len(toks) != 2 || toks[0].Text() != "<" || toks[1].Text() != "<unclosed" {
		t.Errorf("tokens = %v", toks)
	}
}

func TestReadCustomSchema(t *testing.T) {
	schema, err := columns.FromList([]string{"pos", "lemma", "morph"})
	if err != nil {
		t.Fatal(err)
	}
	opts := quietOptions()
	opts.Schema = schema
	docs, diags := readString(t, opts, "doc.tt", "Haus\tNN\tHaus\tNeut.Sg\n")
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if a, ok := docs[0].Tokens()[0].Annotation("morph"); !ok || a.Value() != "Neut.Sg" {
		t.Errorf("morph = %v", a)
	}
}

func TestReadCustomMetaTag(t *testing.T) {
	opts := quietOptions()
	opts.MetaTag = "text"
	docs, _ := readString(t, opts, "doc.tt", "<text id=\"t1\">\n<meta>\nx\t\t\n</meta>\n</text>\n")
	if len(docs) != 1 {
		t.Fatalf("got %d documents", len(docs))
	}
	if a, ok := docs[0].Annotation("id"); !ok || a.Value() != "t1" {
		t.Errorf("id = %v", a)
	}
	if len(docs[0].Spans()) != 1 || docs[0].Spans()[0].Name() != "meta" {
		t.Errorf("<meta> should be a span when the meta tag is renamed")
	}
}

func TestReaderResetsBetweenReads(t *testing.T) {
	r := NewReader(quietOptions())
	if _, err := r.Read(strings.NewReader("<np>\nx\t\n"), "a.tt"); err != nil {
		t.Fatal(err)
	}
	if len(r.Diagnostics()) == 0 {
		t.Fatal("first read should produce diagnostics")
	}
	docs, err := r.Read(strings.NewReader("y\t\t\n"), "b.tt")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Diagnostics()) != 0 {
		t.Errorf("diagnostics leaked across reads: %v", r.Diagnostics())
	}
	if len(docs) != 1 || docs[0].Name() != "b" || len(docs[0].Spans()) != 0 {
		t.Errorf("state leaked across reads")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc1.tt")
	if err := os.WriteFile(path, []byte("Haus\tNN\tHaus\n"), 0644); err != nil {
		t.Fatal(err)
	}
	docs, err := NewReader(quietOptions()).ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(docs) != 1 || docs[0].Name() != "doc1" {
		t.Errorf("docs = %v", docs)
	}

	_, err = NewReader(quietOptions()).ReadFile(filepath.Join(dir, "missing.tt"))
	var ioErr *cerrors.IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) = %v, want IOError wrapping ErrNotExist", err)
	}
}

func TestReadFileLatin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin.tt")
	if err := os.WriteFile(path, []byte("sch\xf6n\tADJD\tsch\xf6n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	opts := quietOptions()
	opts.Charset = "ISO-8859-1"
	docs, err := NewReader(opts).ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := docs[0].Tokens()[0].Text(); got != "schön" {
		t.Errorf("Text() = %q, want schön", got)
	}
}

func TestReadUnknownCharset(t *testing.T) {
	opts := quietOptions()
	opts.Charset = "klingon"
	_, err := NewReader(opts).Read(strings.NewReader("x\t\t\n"), "doc.tt")
	if !errors.Is(err, cerrors.ErrUnsupported) {
		t.Errorf("Read = %v, want ErrUnsupported", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReadStreamError(t *testing.T) {
	_, err := NewReader(quietOptions()).Read(failingReader{}, "doc.tt")
	var ioErr *cerrors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("Read = %v, want IOError", err)
	}
}
