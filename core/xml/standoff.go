package xml

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ttconv/core/encoding"
	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
)

// Element names of the stand-off view.
const (
	ElemCorpus   = "corpus"
	ElemDocument = "document"
	ElemMeta     = "meta"
	ElemTokens   = "tokens"
	ElemToken    = "token"
	ElemSpans    = "spans"
	ElemSpan     = "span"
	ElemAnno     = "anno"
)

// Render writes documents as a stand-off corpus:
//
//	<corpus>
//	  <document name="doc1">
//	    <meta><anno name="lang" value="de"/></meta>
//	    <tokens><token id="t1" text="Haus"><anno name="pos" value="NN"/></token></tokens>
//	    <spans><span id="s1" name="np" tokens="t1"/></spans>
//	  </document>
//	</corpus>
func Render(docs ...*model.Document) []byte {
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	buf.WriteString("<" + ElemCorpus + ">\n")
	for _, doc := range docs {
		if doc != nil {
			renderDocument(&buf, doc)
		}
	}
	buf.WriteString("</" + ElemCorpus + ">\n")
	return buf.Bytes()
}

func renderDocument(w *bytes.Buffer, doc *model.Document) {
	fmt.Fprintf(w, "  <%s name=\"%s\">\n", ElemDocument, encoding.EscapeXMLAttr(doc.Name()))

	if annos := doc.Annotations(); len(annos) > 0 {
		fmt.Fprintf(w, "    <%s>\n", ElemMeta)
		renderAnnotations(w, annos, 6)
		fmt.Fprintf(w, "    </%s>\n", ElemMeta)
	}

	ids := make(map[*model.Token]string, len(doc.Tokens()))
	fmt.Fprintf(w, "    <%s>\n", ElemTokens)
	for i, tok := range doc.Tokens() {
		id := "t" + strconv.Itoa(i+1)
		ids[tok] = id
		open := fmt.Sprintf("      <%s id=\"%s\" seq=\"%d\" text=\"%s\"", ElemToken, id, tok.Seq(), encoding.EscapeXMLAttr(tok.Text()))
		if len(tok.Annotations()) == 0 {
			w.WriteString(open + "/>\n")
			continue
		}
		w.WriteString(open + ">\n")
		renderAnnotations(w, tok.Annotations(), 8)
		fmt.Fprintf(w, "      </%s>\n", ElemToken)
	}
	fmt.Fprintf(w, "    </%s>\n", ElemTokens)

	if spans := doc.Spans(); len(spans) > 0 {
		fmt.Fprintf(w, "    <%s>\n", ElemSpans)
		for i, s := range spans {
			refs := make([]string, 0, s.Len())
			for _, tok := range s.Tokens() {
				refs = append(refs, ids[tok])
			}
			open := fmt.Sprintf("      <%s id=\"s%d\" name=\"%s\" tokens=\"%s\"", ElemSpan, i+1,
				encoding.EscapeXMLAttr(s.Name()), strings.Join(refs, " "))
			if len(s.Annotations()) == 0 {
				w.WriteString(open + "/>\n")
				continue
			}
			w.WriteString(open + ">\n")
			renderAnnotations(w, s.Annotations(), 8)
			fmt.Fprintf(w, "      </%s>\n", ElemSpan)
		}
		fmt.Fprintf(w, "    </%s>\n", ElemSpans)
	}

	fmt.Fprintf(w, "  </%s>\n", ElemDocument)
}

func renderAnnotations(w *bytes.Buffer, annos []*model.Annotation, depth int) {
	pad := strings.Repeat(" ", depth)
	for _, a := range annos {
		fmt.Fprintf(w, "%s<%s name=\"%s\" value=\"%s\"/>\n", pad, ElemAnno,
			encoding.EscapeXMLAttr(a.Name()), encoding.EscapeXMLAttr(a.Value()))
	}
}

// Decode parses a stand-off corpus back into documents.
func Decode(data []byte) ([]*model.Document, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, &cerrors.ParseError{Format: "standoff", Message: err.Error(), Err: err}
	}
	root := doc.Root()
	if root == nil || root.Name() != ElemCorpus {
		return nil, cerrors.NewParse("standoff", "", "missing <corpus> root element")
	}

	var docs []*model.Document
	for _, n := range root.Children() {
		if n.Name() != ElemDocument {
			continue
		}
		d, err := decodeDocument(n)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func decodeDocument(n *Node) (*model.Document, error) {
	doc := model.NewDocument(n.Attr("name"))
	ids := make(map[string]*model.Token)

	for _, section := range n.Children() {
		switch section.Name() {
		case ElemMeta:
			for _, a := range annotationsOf(section) {
				doc.AddAnnotation(a)
			}

		case ElemTokens:
			for _, t := range section.Children() {
				if t.Name() != ElemToken {
					continue
				}
				tok := doc.CreateToken(t.Attr("text"))
				if seq, err := strconv.Atoi(t.Attr("seq")); err == nil {
					tok.SetSeq(seq)
				}
				for _, a := range annotationsOf(t) {
					tok.AddAnnotation(a)
				}
				if id := t.Attr("id"); id != "" {
					ids[id] = tok
				}
			}

		case ElemSpans:
			for _, s := range section.Children() {
				if s.Name() != ElemSpan {
					continue
				}
				span := doc.CreateSpan(s.Attr("name"))
				for _, a := range annotationsOf(s) {
					span.AddAnnotation(a)
				}
				for _, ref := range strings.Fields(s.Attr("tokens")) {
					tok, ok := ids[ref]
					if !ok {
						return nil, cerrors.NewParse("standoff", "",
							fmt.Sprintf("span %q references unknown token %q", s.Attr("name"), ref))
					}
					span.AddToken(tok)
				}
			}
		}
	}
	return doc, nil
}

func annotationsOf(n *Node) []*model.Annotation {
	var annos []*model.Annotation
	for _, c := range n.Children() {
		if c.Name() == ElemAnno {
			annos = append(annos, model.NewAnnotation(c.Attr("name"), c.Attr("value")))
		}
	}
	return annos
}
