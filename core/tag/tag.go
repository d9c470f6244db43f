// Package tag recognizes the pseudo-XML lines of the TreeTagger format:
// processing instructions, start tags with attributes, and end tags.
//
// This is not an XML parser. A line is a tag only if the whole trimmed line
// matches one of the constructs; anything else is a data row, and none of
// the functions here fail or panic on arbitrary input.
package tag

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ttconv/core/encoding"
)

// Attr is one attribute="value" pair of a start tag.
type Attr struct {
	Name  string
	Value string
}

//nolint:govet // participle grammar tags are not standard struct tags
type startTagGrammar struct {
	Name  string         `"<" @Name`
	Attrs []*attrGrammar `@@* ">"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrGrammar struct {
	Name  string `@Name "="`
	Value string `@String`
}

//nolint:govet // participle grammar tags are not standard struct tags
type endTagGrammar struct {
	Name string `"<" "/" @Name ">"`
}

// tagLexer tokenizes a single tag line. Values may be single or double
// quoted; a value cannot contain its own quote character.
var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Name", Pattern: `[^\s<>/="'?]+`},
	{Name: "Punct", Pattern: `[<>/=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	startTagParser = participle.MustBuild[startTagGrammar](
		participle.Lexer(tagLexer),
		participle.Elide("Whitespace"),
	)
	endTagParser = participle.MustBuild[endTagGrammar](
		participle.Lexer(tagLexer),
		participle.Elide("Whitespace"),
	)
)

// IsProcessingInstruction reports whether line is a <?...?> instruction.
func IsProcessingInstruction(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 4 && strings.HasPrefix(line, "<?") && strings.HasSuffix(line, "?>")
}

// IsStartTag reports whether line is a start tag such as <np type="x">.
func IsStartTag(line string) bool {
	_, ok := parseStart(line)
	return ok
}

// IsEndTag reports whether line is an end tag such as </np>.
func IsEndTag(line string) bool {
	_, ok := parseEnd(line)
	return ok
}

// Name returns the tag name of a start or end tag, or "" for other lines.
func Name(line string) string {
	if st, ok := parseStart(line); ok {
		return st.Name
	}
	if et, ok := parseEnd(line); ok {
		return et.Name
	}
	return ""
}

// Attributes returns the attribute pairs of a start tag in left-to-right
// order with &lt;, &gt; and &amp; unescaped. It returns nil for other lines.
func Attributes(line string) []Attr {
	st, ok := parseStart(line)
	if !ok || len(st.Attrs) == 0 {
		return nil
	}
	attrs := make([]Attr, 0, len(st.Attrs))
	for _, a := range st.Attrs {
		attrs = append(attrs, Attr{
			Name:  a.Name,
			Value: encoding.UnescapeTagValue(unquote(a.Value)),
		})
	}
	return attrs
}

func parseStart(line string) (*startTagGrammar, bool) {
	line = strings.TrimSpace(line)
	if !looksLikeTag(line) || line[1] == '/' {
		return nil, false
	}
	st, err := startTagParser.ParseString("", line)
	if err != nil {
		return nil, false
	}
	return st, true
}

func parseEnd(line string) (*endTagGrammar, bool) {
	line = strings.TrimSpace(line)
	if !looksLikeTag(line) || line[1] != '/' || isSpace(line[2]) {
		return nil, false
	}
	et, err := endTagParser.ParseString("", line)
	if err != nil {
		return nil, false
	}
	return et, true
}

// looksLikeTag rejects lines that cannot be tags before running a parser:
// the name must follow "<" immediately and the line must end in ">".
func looksLikeTag(line string) bool {
	if len(line) < 3 || line[0] != '<' || line[len(line)-1] != '>' {
		return false
	}
	if isSpace(line[1]) || line[1] == '?' {
		return false
	}
	// Tab-separated rows are data rows even if they start with "<".
	return !strings.ContainsRune(line, '\t')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
