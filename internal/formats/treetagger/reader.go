package treetagger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/ttconv/core/diag"
	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/tag"
	"github.com/FocuswithJustin/ttconv/internal/fileutil"
	"github.com/FocuswithJustin/ttconv/internal/logging"
)

const (
	utf8BOM = "\uFEFF"

	// maxLineSize bounds a single input line.
	maxLineSize = 16 * 1024 * 1024
)

// Reader parses the tabular format into documents. A Reader is not safe for
// concurrent use; each Read starts from a clean state.
type Reader struct {
	opts  Options
	diags diag.List

	source   string
	docs     []*model.Document
	cur      *model.Document
	explicit bool
	open     []*model.Span // most recently opened first
	line     int
	row      int
}

// NewReader creates a Reader.
func NewReader(opts Options) *Reader {
	return &Reader{opts: opts.withDefaults()}
}

// Diagnostics returns the structural warnings of the last Read.
func (r *Reader) Diagnostics() diag.List {
	return r.diags
}

// ReadFile reads all documents from path. Compressed input is detected
// automatically and decoded from the configured charset.
func (r *Reader) ReadFile(path string) ([]*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cerrors.NewIO("open", path, err)
	}
	defer f.Close()
	return r.read(f, path)
}

// Read reads all documents from in. name is the file name the documents are
// named after; everything from its first dot on is dropped.
func (r *Reader) Read(in io.Reader, name string) ([]*model.Document, error) {
	return r.read(in, name)
}

func (r *Reader) read(in io.Reader, name string) ([]*model.Document, error) {
	r.reset(name)

	text, err := fileutil.NewTextReader(in, r.opts.Charset)
	if err != nil {
		var unsupported *cerrors.UnsupportedError
		if cerrors.As(err, &unsupported) {
			return nil, err
		}
		return nil, cerrors.NewIO("read", name, err)
	}

	sc := bufio.NewScanner(text)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		r.line++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if r.line == 1 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		r.handleLine(line)
	}
	if err := sc.Err(); err != nil {
		return nil, cerrors.NewIO("read", name, err)
	}

	if r.cur != nil {
		r.closeDocument(true)
	}
	r.nameDocuments(baseName(name))

	if len(r.docs) == 0 {
		r.warn(diag.NoDocuments, 0, "no valid documents found")
		return []*model.Document{}, nil
	}
	return r.docs, nil
}

func (r *Reader) reset(name string) {
	r.diags = nil
	r.source = name
	r.docs = nil
	r.cur = nil
	r.explicit = false
	r.open = nil
	r.line = 0
	r.row = 0
}

func (r *Reader) handleLine(line string) {
	switch {
	case strings.TrimSpace(line) == "":
	case tag.IsProcessingInstruction(line):
	case tag.IsStartTag(line):
		name := tag.Name(line)
		if r.isMeta(name) {
			r.startDocument(tag.Attributes(line))
		} else {
			r.startSpan(name, tag.Attributes(line))
		}
	case tag.IsEndTag(line):
		name := tag.Name(line)
		if r.isMeta(name) {
			r.endDocument()
		} else {
			r.endSpan(name)
		}
	default:
		r.dataRow(line)
	}
}

func (r *Reader) isMeta(name string) bool {
	return strings.EqualFold(name, r.opts.MetaTag)
}

func (r *Reader) startDocument(attrs []tag.Attr) {
	if r.cur != nil {
		if r.explicit {
			r.warn(diag.MissingDocumentEnd, 0, fmt.Sprintf("document opened before </%s>", r.opts.MetaTag))
		}
		r.closeDocument(false)
	}
	r.cur = model.NewDocument("")
	r.explicit = true
	for _, a := range attrs {
		r.cur.AddAnnotation(model.NewAnnotation(a.Name, a.Value))
	}
}

func (r *Reader) endDocument() {
	if r.cur == nil {
		r.warn(diag.UnexpectedDocEnd, 0, fmt.Sprintf("</%s> without open document", r.opts.MetaTag))
		return
	}
	r.closeDocument(false)
}

// ensureDocument opens an implicit document for content outside meta tags.
func (r *Reader) ensureDocument() {
	if r.cur == nil {
		r.cur = model.NewDocument("")
		r.explicit = false
	}
}

func (r *Reader) startSpan(name string, attrs []tag.Attr) {
	r.ensureDocument()
	for _, s := range r.open {
		if strings.EqualFold(s.Name(), name) {
			r.warn(diag.DuplicateOpenSpan, 0, fmt.Sprintf("<%s> opened while another <%s> is open", name, s.Name()))
			break
		}
	}
	s := r.cur.CreateSpan(name)
	for _, a := range attrs {
		s.AddAnnotation(model.NewAnnotation(a.Name, a.Value))
	}
	r.open = append([]*model.Span{s}, r.open...)
}

func (r *Reader) endSpan(name string) {
	for i, s := range r.open {
		if !strings.EqualFold(s.Name(), name) {
			continue
		}
		r.open = append(r.open[:i], r.open[i+1:]...)
		if s.Len() == 0 {
			r.warn(diag.EmptySpan, 0, fmt.Sprintf("<%s> contains no tokens", s.Name()))
			r.cur.RemoveSpan(s)
		}
		return
	}
	r.warn(diag.UnmatchedEndTag, 0, fmt.Sprintf("</%s> has no matching start tag", name))
}

func (r *Reader) dataRow(line string) {
	r.ensureDocument()
	r.row++

	fields := strings.Split(line, "\t")
	schema := r.opts.Schema
	switch {
	case len(fields) > schema.Len():
		r.warn(diag.TooManyColumns, r.row, fmt.Sprintf("%d fields, %d columns configured", len(fields), schema.Len()))
	case len(fields) < schema.Len():
		r.warn(diag.TooFewColumns, r.row, fmt.Sprintf("%d fields, %d columns configured", len(fields), schema.Len()))
	}

	tok := r.cur.CreateToken(fields[0])
	tok.SetSeq(r.line)
	for _, s := range r.open {
		s.AddToken(tok)
	}
	for i := 1; i < len(fields); i++ {
		tok.AddAnnotation(model.NewAnnotation(schema.NameFor(i), fields[i]))
	}
}

// closeDocument strips unclosed spans and emits the current document. At
// end of input a document with an explicit start tag is discarded instead.
func (r *Reader) closeDocument(atEOF bool) {
	doc := r.cur
	for _, s := range r.open {
		tokens := doc.Tokens()
		for i := len(tokens) - 1; i >= 0 && tokens[i].InSpan(s); i-- {
			s.RemoveToken(tokens[i])
		}
		doc.RemoveSpan(s)
		r.warn(diag.UnclosedSpan, 0, fmt.Sprintf("<%s> is never closed", s.Name()))
	}
	r.open = nil

	if atEOF && r.explicit {
		r.warn(diag.MissingDocumentEnd, 0, fmt.Sprintf("missing </%s>, document ignored", r.opts.MetaTag))
	} else {
		r.docs = append(r.docs, doc)
	}
	r.cur = nil
	r.explicit = false
}

func (r *Reader) nameDocuments(base string) {
	if len(r.docs) == 1 {
		r.docs[0].SetName(base)
		return
	}
	for i, doc := range r.docs {
		doc.SetName(fmt.Sprintf("%s_%d", base, i))
	}
}

func (r *Reader) warn(kind diag.Kind, row int, msg string) {
	d := diag.Diagnostic{Kind: kind, Line: r.line, Row: row, Message: msg}
	r.diags = append(r.diags, d)
	logging.Diagnostic(r.opts.Logger, r.source, d)
}

// baseName returns the file name of path up to its first dot.
func baseName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}
