package model

// Document is a named ordered sequence of tokens with metadata annotations.
type Document struct {
	annotated

	name    string
	tokens  []*Token
	spans   []*Span
	nextSeq int
}

// NewDocument creates an empty document.
func NewDocument(name string) *Document {
	return &Document{name: name}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// SetName renames the document.
func (d *Document) SetName(name string) { d.name = name }

// Tokens returns the tokens in document order.
func (d *Document) Tokens() []*Token { return d.tokens }

// Spans returns the spans in creation order.
func (d *Document) Spans() []*Span { return d.spans }

// CreateToken appends a new token with the next synthetic sequence number.
func (d *Document) CreateToken(text string) *Token {
	d.nextSeq++
	t := &Token{text: text, seq: d.nextSeq}
	d.tokens = append(d.tokens, t)
	return t
}

// CreateSpan registers a new empty span.
func (d *Document) CreateSpan(name string) *Span {
	s := &Span{name: name}
	d.spans = append(d.spans, s)
	return s
}

// RemoveSpan unregisters s and unlinks it from all its tokens.
func (d *Document) RemoveSpan(s *Span) {
	for i, cur := range d.spans {
		if cur == s {
			d.spans = append(d.spans[:i], d.spans[i+1:]...)
			break
		}
	}
	for _, t := range s.tokens {
		t.removeSpan(s)
	}
	s.tokens = nil
}

// Text joins token texts with sep.
func (d *Document) Text(sep string) string {
	n := 0
	for _, t := range d.tokens {
		n += len(t.text) + len(sep)
	}
	buf := make([]byte, 0, n)
	for i, t := range d.tokens {
		if i > 0 {
			buf = append(buf, sep...)
		}
		buf = append(buf, t.text...)
	}
	return string(buf)
}

// Equal compares two documents structurally. Span membership is compared as
// token positions, so the token/span cycle is not followed.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.name != other.name || len(d.tokens) != len(other.tokens) || len(d.spans) != len(other.spans) {
		return false
	}
	if !annotationsEqual(d.annotations, other.annotations) {
		return false
	}
	for i := range d.tokens {
		if !d.tokens[i].Equal(other.tokens[i]) {
			return false
		}
	}
	pos := d.positions()
	otherPos := other.positions()
	for i := range d.spans {
		a, b := d.spans[i], other.spans[i]
		if a.name != b.name || !annotationsEqual(a.annotations, b.annotations) || len(a.tokens) != len(b.tokens) {
			return false
		}
		for j := range a.tokens {
			if pos[a.tokens[j]] != otherPos[b.tokens[j]] {
				return false
			}
		}
	}
	return true
}

func (d *Document) positions() map[*Token]int {
	m := make(map[*Token]int, len(d.tokens))
	for i, t := range d.tokens {
		m[t] = i
	}
	return m
}

// Token is one data row of a document.
type Token struct {
	annotated

	text  string
	seq   int
	spans []*Span
}

// Text returns the surface text.
func (t *Token) Text() string { return t.text }

// Seq returns the line-sequence number.
func (t *Token) Seq() int { return t.seq }

// SetSeq overrides the sequence number, e.g. with the input line number.
func (t *Token) SetSeq(seq int) { t.seq = seq }

// Spans returns the spans containing this token, in the order they were joined.
func (t *Token) Spans() []*Span { return t.spans }

// InSpan reports whether the token belongs to s.
func (t *Token) InSpan(s *Span) bool {
	for _, cur := range t.spans {
		if cur == s {
			return true
		}
	}
	return false
}

// POS returns the part-of-speech annotation, if any.
func (t *Token) POS() *Annotation { return t.firstOfKind(KindPOS) }

// Lemma returns the lemma annotation, if any.
func (t *Token) Lemma() *Annotation { return t.firstOfKind(KindLemma) }

// Equal compares text and annotations. Span membership is not compared here.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.text == other.text && annotationsEqual(t.annotations, other.annotations)
}

func (t *Token) removeSpan(s *Span) {
	for i, cur := range t.spans {
		if cur == s {
			t.spans = append(t.spans[:i], t.spans[i+1:]...)
			return
		}
	}
}

// Span is a named group of tokens carrying its own annotations.
// Two spans with the same name are distinct.
type Span struct {
	annotated

	name   string
	tokens []*Token
}

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// SetName renames the span.
func (s *Span) SetName(name string) { s.name = name }

// Tokens returns the tokens of the span in the order they were added.
func (s *Span) Tokens() []*Token { return s.tokens }

// Len returns the number of tokens the span covers.
func (s *Span) Len() int { return len(s.tokens) }

// AddToken links t into the span and the span into t.
// Adding a token twice is a no-op.
func (s *Span) AddToken(t *Token) {
	if t.InSpan(s) {
		return
	}
	s.tokens = append(s.tokens, t)
	t.spans = append(t.spans, s)
}

// RemoveToken unlinks t from the span in both directions.
func (s *Span) RemoveToken(t *Token) {
	for i, cur := range s.tokens {
		if cur == t {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			break
		}
	}
	t.removeSpan(s)
}
