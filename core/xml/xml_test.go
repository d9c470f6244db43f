package xml

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
)

func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.xml)); err == nil {
				t.Error("Parse should fail for invalid XML")
			}
			if err := WellFormed([]byte(tt.xml)); err == nil {
				t.Error("WellFormed should fail for invalid XML")
			}
		})
	}
}

func TestWellFormedRejectsEntities(t *testing.T) {
	data := `<?xml version="1.0"?>
<!DOCTYPE r [<!ENTITY x "boom">]>
<r>&x;</r>`
	if err := WellFormed([]byte(data)); err == nil {
		t.Error("entity references should not be expanded")
	}
	if err := WellFormed([]byte(`<r a="1"><c/></r>`)); err != nil {
		t.Errorf("WellFormed = %v", err)
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(`<root><item id="1">a</item><item id="2">b</item></root>`))
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := doc.XPath("//item")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[1].Attr("id") != "2" || nodes[1].Text() != "b" {
		t.Errorf("XPath(//item) = %d nodes", len(nodes))
	}

	first, err := doc.XPathFirst("//item[@id='2']")
	if err != nil || first == nil || first.Text() != "b" {
		t.Errorf("XPathFirst = %v, %v", first, err)
	}
	none, err := doc.XPathFirst("//missing")
	if err != nil || none != nil {
		t.Errorf("XPathFirst(missing) = %v, %v", none, err)
	}

	if _, err := doc.XPath("//item["); err == nil {
		t.Error("invalid expression should fail")
	}
}

func TestEvaluate(t *testing.T) {
	doc, _ := Parse([]byte(`<root><item id="1">a</item><item id="2">b</item></root>`))
	tests := []struct {
		expr string
		want string
	}{
		{"count(//item)", "2"},
		{"//item[2]/@id", "2"},
		{"string(//item[1])", "a"},
		{"count(//item) > 1", "true"},
		{"//nothing", ""},
	}
	for _, tt := range tests {
		got, err := doc.Evaluate(tt.expr)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
	if _, err := doc.Evaluate("(("); err == nil {
		t.Error("invalid expression should fail")
	}
}

func TestEvaluateAll(t *testing.T) {
	doc, _ := Parse([]byte(`<root><item id="1">a</item><item id="2">b</item></root>`))
	tests := []struct {
		expr string
		want []string
	}{
		{"//item/@id", []string{"1", "2"}},
		{"//item", []string{"a", "b"}},
		{"count(//item)", []string{"2"}},
		{"//nothing", nil},
	}
	for _, tt := range tests {
		got, err := doc.EvaluateAll(tt.expr)
		if err != nil {
			t.Errorf("EvaluateAll(%q): %v", tt.expr, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EvaluateAll(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
	if _, err := doc.EvaluateAll("//item["); err == nil {
		t.Error("invalid expression should fail")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no declaration",
			input: `<a x="1&amp;2"><b>text</b><c/></a>`,
			want:  "<a x=\"1&amp;2\">\n  <b>text</b>\n  <c/>\n</a>\n",
		},
		{
			name:  "declaration kept",
			input: `<?xml version="1.0" encoding="UTF-8"?>` + "\n<a><c/></a>",
			want:  "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a>\n  <c/>\n</a>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format([]byte(tt.input), "")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Format([]byte("<a>"), "\t"); err == nil {
		t.Error("Format should fail on malformed input")
	}
}

func TestNodeNil(t *testing.T) {
	n := &Node{}
	if n.Name() != "" || n.Text() != "" || n.Attr("x") != "" || n.Children() != nil || n.OutputXML() != "" || n.IsElement() {
		t.Error("nil node accessors should return zero values")
	}
	var d *Document
	if d.Root() != nil {
		t.Error("nil document should have no root")
	}
}

func sampleDocument() *model.Document {
	doc := model.NewDocument("doc1")
	doc.AddAnnotation(model.NewAnnotation("title", `"quoted" & <bracketed>`))
	das := doc.CreateToken("Das")
	das.AddAnnotation(model.NewPOS("ART"))
	das.AddAnnotation(model.NewLemma("die"))
	haus := doc.CreateToken("Haus")
	haus.AddAnnotation(model.NewPOS("NN"))
	doc.CreateToken("!")

	np := doc.CreateSpan("np")
	np.AddAnnotation(model.NewAnnotation("case", "nom"))
	np.AddToken(das)
	np.AddToken(haus)
	doc.CreateSpan("s").AddToken(haus)
	return doc
}

func TestRenderDecodeRoundTrip(t *testing.T) {
	orig := sampleDocument()
	other := model.NewDocument("doc2")
	other.CreateToken("x")

	data := Render(orig, nil, other)
	if err := WellFormed(data); err != nil {
		t.Fatalf("rendered XML is not well-formed: %v\n%s", err, data)
	}

	docs, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if !docs[0].Equal(orig) {
		t.Errorf("document changed through XML:\n%s", data)
	}
	if !docs[1].Equal(other) {
		t.Error("second document changed through XML")
	}
	if docs[0].Tokens()[1].Seq() != orig.Tokens()[1].Seq() {
		t.Error("token sequence numbers should survive")
	}
}

func TestRenderQueryable(t *testing.T) {
	doc, err := Parse(Render(sampleDocument()))
	if err != nil {
		t.Fatal(err)
	}
	nouns, err := doc.XPath("//token[anno[@name='pos' and @value='NN']]")
	if err != nil {
		t.Fatal(err)
	}
	if len(nouns) != 1 || nouns[0].Attr("text") != "Haus" {
		t.Errorf("noun query returned %d nodes", len(nouns))
	}
	refs, _ := doc.Evaluate("//span[@name='np']/@tokens")
	if refs != "t1 t2" {
		t.Errorf("np tokens = %q, want t1 t2", refs)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"malformed", "<corpus><document>"},
		{"wrong root", "<document/>"},
		{"unknown token", `<corpus><document name="d"><tokens><token id="t1" text="a"/></tokens><spans><span name="np" tokens="t1 t9"/></spans></document></corpus>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.xml))
			var perr *cerrors.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Decode = %v, want ParseError", err)
			}
			if tt.name == "unknown token" && !strings.Contains(err.Error(), "t9") {
				t.Errorf("error should name the missing token: %v", err)
			}
		})
	}
}
