package treetagger

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/FocuswithJustin/ttconv/core/diag"
	"github.com/FocuswithJustin/ttconv/core/encoding"
	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/internal/fileutil"
	"github.com/FocuswithJustin/ttconv/internal/logging"
)

// Writer serializes one document at a time to the tabular format.
type Writer struct {
	opts  Options
	diags diag.List
	name  string
}

// NewWriter creates a Writer.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts.withDefaults()}
}

// Diagnostics returns the structural warnings of the last Write.
func (w *Writer) Diagnostics() diag.List {
	return w.diags
}

// WriteFile writes doc to path, compressed according to its extension and
// encoded in the configured charset.
func (w *Writer) WriteFile(path string, doc *model.Document) (err error) {
	if path == "" {
		return cerrors.NewConfig("output", "no output location given")
	}
	if doc == nil {
		return cerrors.NewConfig("document", "no document given")
	}
	out, err := fileutil.CreateText(path, w.opts.Charset)
	if err != nil {
		var unsupported *cerrors.UnsupportedError
		if cerrors.As(err, &unsupported) {
			return err
		}
		return cerrors.NewIO("create", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerrors.NewIO("close", path, cerr)
		}
	}()
	return w.Write(out, doc)
}

// Write serializes doc to out.
func (w *Writer) Write(out io.Writer, doc *model.Document) error {
	if doc == nil {
		return cerrors.NewConfig("document", "no document given")
	}
	w.diags = nil
	w.name = doc.Name()

	bw := bufio.NewWriter(out)
	e := &emitter{w: w, out: bw, counts: make(map[string]int)}
	e.document(doc, w.extraColumns(doc))
	if e.err != nil {
		return cerrors.NewIO("write", doc.Name(), e.err)
	}
	if err := bw.Flush(); err != nil {
		return cerrors.NewIO("write", doc.Name(), err)
	}
	return nil
}

// extraColumns returns the generic annotation columns written after lemma.
// Columns declared in the schema win; otherwise every generic annotation name
// found on fully tagged tokens is used, sorted.
func (w *Writer) extraColumns(doc *model.Document) []string {
	if w.opts.OmitAnyAnnotation {
		return nil
	}
	if extra := w.opts.Schema.Extra(); len(extra) > 0 {
		return extra
	}
	seen := make(map[string]bool)
	for _, tok := range doc.Tokens() {
		if tok.POS() == nil || tok.Lemma() == nil || len(tok.Annotations()) <= 2 {
			continue
		}
		for _, a := range tok.Annotations() {
			if a.Kind() == model.KindAny {
				seen[a.Name()] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *Writer) warn(kind diag.Kind, msg string) {
	d := diag.Diagnostic{Kind: kind, Message: msg}
	w.diags = append(w.diags, d)
	logging.Diagnostic(w.opts.Logger, w.name, d)
}

// emitter holds the per-document output state. The first write error is
// kept and later writes are skipped.
type emitter struct {
	w      *Writer
	out    *bufio.Writer
	err    error
	open   []*model.Span // in opening order
	counts map[string]int
}

func (e *emitter) document(doc *model.Document, extra []string) {
	meta := doc.Annotations()
	if len(meta) > 0 {
		e.startTag(e.w.opts.MetaTag, meta)
	}
	for _, tok := range doc.Tokens() {
		e.closeSpans(tok)
		e.openSpans(tok)
		e.row(tok, extra)
	}
	e.closeSpans(nil)
	if len(meta) > 0 {
		e.endTag(e.w.opts.MetaTag)
	}
}

// closeSpans closes, innermost first, every open span tok is not part of.
// A nil token closes everything.
func (e *emitter) closeSpans(tok *model.Token) {
	for i := len(e.open) - 1; i >= 0; i-- {
		s := e.open[i]
		if tok != nil && tok.InSpan(s) {
			continue
		}
		e.endTag(s.Name())
		e.counts[s.Name()]--
		e.open = append(e.open[:i], e.open[i+1:]...)
	}
}

// openSpans opens the spans starting at tok, larger spans first so that
// spans starting at the same token nest.
func (e *emitter) openSpans(tok *model.Token) {
	var starting []*model.Span
	for _, s := range tok.Spans() {
		if !e.isOpen(s) {
			starting = append(starting, s)
		}
	}
	sort.SliceStable(starting, func(i, j int) bool {
		if starting[i].Len() != starting[j].Len() {
			return starting[i].Len() > starting[j].Len()
		}
		return starting[i].Name() < starting[j].Name()
	})
	for _, s := range starting {
		e.counts[s.Name()]++
		if e.counts[s.Name()] > 1 {
			e.w.warn(diag.DuplicateOpenSpan, fmt.Sprintf("<%s> is open %d times", s.Name(), e.counts[s.Name()]))
		}
		e.startTag(s.Name(), s.Annotations())
		e.open = append(e.open, s)
	}
}

func (e *emitter) isOpen(s *model.Span) bool {
	for _, o := range e.open {
		if o == s {
			return true
		}
	}
	return false
}

func (e *emitter) row(tok *model.Token, extra []string) {
	var b strings.Builder
	b.WriteString(tok.Text())
	b.WriteByte('\t')
	if pos := tok.POS(); pos != nil {
		b.WriteString(pos.Value())
	}
	b.WriteByte('\t')
	if lemma := tok.Lemma(); lemma != nil {
		b.WriteString(lemma.Value())
	}
	for _, name := range extra {
		b.WriteByte('\t')
		if a := genericAnnotation(tok, name); a != nil {
			b.WriteString(a.Value())
		}
	}
	e.line(b.String())
}

// genericAnnotation returns the first generic annotation called name.
func genericAnnotation(tok *model.Token, name string) *model.Annotation {
	for _, a := range tok.Annotations() {
		if a.Kind() == model.KindAny && a.Name() == name {
			return a
		}
	}
	return nil
}

// tagWhitespace turns characters that would split a tag line or make it
// read back as a data row into spaces.
var tagWhitespace = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func (e *emitter) startTag(name string, attrs []*model.Annotation) {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		v := a.Value()
		if strings.ContainsAny(v, "\t\r\n") {
			v = tagWhitespace.Replace(v)
			e.w.warn(diag.TagValueWhitespace, fmt.Sprintf("<%s %s=...>: tab or line break replaced by space", name, a.Name()))
		}
		b.WriteByte(' ')
		b.WriteString(a.Name())
		b.WriteByte('=')
		b.WriteString(encoding.QuoteTagValue(v))
	}
	b.WriteByte('>')
	e.line(b.String())
}

func (e *emitter) endTag(name string) {
	e.line("</" + name + ">")
}

func (e *emitter) line(s string) {
	if e.err != nil {
		return
	}
	if _, err := e.out.WriteString(s); err != nil {
		e.err = err
		return
	}
	e.err = e.out.WriteByte('\n')
}
