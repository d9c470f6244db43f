package encoding

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
)

// DefaultCharset is used when no file encoding is configured.
const DefaultCharset = "UTF-8"

// Charset resolves a charset label (e.g. "UTF-8", "ISO-8859-1", "latin1",
// "windows-1252") to an encoding. An empty name means UTF-8.
func Charset(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" || isUTF8(name) {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, cerrors.NewUnsupported("encoding", name)
	}
	return enc, nil
}

// IsUTF8 reports whether the label names UTF-8.
func IsUTF8(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || isUTF8(name)
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
