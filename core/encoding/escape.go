// Package encoding provides tag value escaping and charset resolution.
package encoding

import "strings"

var tagUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

// EscapeXMLText escapes only the basic XML entities for text content.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in double-quoted XML attributes.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// UnescapeTagValue reverses the entity escaping used in tag attribute values
// of the tabular format. Only &lt;, &gt; and &amp; are recognized.
func UnescapeTagValue(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return tagUnescaper.Replace(s)
}

// QuoteTagValue escapes v and wraps it in quotes suitable for a start tag.
// Double quotes are used unless the value itself contains one; a value
// containing both quote characters gets &quot; and double quotes.
func QuoteTagValue(v string) string {
	v = EscapeXMLText(v)
	hasDouble := strings.Contains(v, "\"")
	switch {
	case !hasDouble:
		return "\"" + v + "\""
	case !strings.Contains(v, "'"):
		return "'" + v + "'"
	default:
		return "\"" + strings.ReplaceAll(v, "\"", "&quot;") + "\""
	}
}
