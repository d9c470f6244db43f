// Package columns resolves which annotation each tab-separated field of a
// data row carries.
//
// Column 0 is always the token text. The canonical configuration is an
// ordered list of names; the legacy indexed form ("column1=pos",
// "column2=lemma", ...) is converted to a list by ParseIndexed.
package columns

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
)

const (
	// Token is the marker name of the token text column.
	Token = "tok"
	// Fallback names fields beyond the declared columns.
	Fallback = "anyAnno"
	// IndexedPrefix prefixes legacy indexed column keys.
	IndexedPrefix = "column"
)

// Schema is an ordered list of column names whose first entry is Token.
type Schema struct {
	names []string
}

// Default returns [tok, pos, lemma].
func Default() *Schema {
	return &Schema{names: []string{Token, model.POSName, model.LemmaName}}
}

// FromList builds a schema from an ordered name list. A missing token marker
// is implied at position 0. An empty list yields the default schema.
func FromList(names []string) (*Schema, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	out := make([]string, 0, len(names)+1)
	if names[0] != Token {
		out = append(out, Token)
	}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, cerrors.NewConfig("columns", fmt.Sprintf("column %d has an empty name", i))
		}
		if n == Token && i != 0 {
			return nil, cerrors.NewConfig("columns", fmt.Sprintf("token column %q must come first", Token))
		}
		out = append(out, n)
	}
	return &Schema{names: out}, nil
}

// FromIndexed builds a schema from 1-based annotation column indexes. The
// indexes must be consecutive starting at 1 and the names unique.
func FromIndexed(cols map[int]string) (*Schema, error) {
	if len(cols) == 0 {
		return Default(), nil
	}
	idx := make([]int, 0, len(cols))
	for i := range cols {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	seen := make(map[string]int, len(cols))
	names := []string{Token}
	for pos, i := range idx {
		key := IndexedPrefix + strconv.Itoa(i)
		if i <= 0 {
			return nil, cerrors.NewConfig(key, "column index must be positive")
		}
		if i != pos+1 {
			return nil, cerrors.NewConfig(key, fmt.Sprintf("column indexes must be consecutive, expected %s%d", IndexedPrefix, pos+1))
		}
		name := strings.TrimSpace(cols[i])
		if name == "" {
			return nil, cerrors.NewConfig(key, "column name must not be empty")
		}
		if prev, dup := seen[name]; dup {
			return nil, cerrors.NewConfig(key, fmt.Sprintf("column name %q already used by %s%d", name, IndexedPrefix, prev))
		}
		seen[name] = i
		names = append(names, name)
	}
	return &Schema{names: names}, nil
}

// ParseIndexed extracts legacy "column<N>" keys from props and builds the
// schema. Keys without the prefix are ignored. Keys are matched after
// trimming; the index must be numeric and appear once.
func ParseIndexed(props map[string]string) (*Schema, error) {
	cols := make(map[int]string)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := strings.TrimSpace(k)
		if !strings.HasPrefix(strings.ToLower(key), IndexedPrefix) {
			continue
		}
		suffix := key[len(IndexedPrefix):]
		if suffix == "" || suffix[0] == 's' {
			// "columns" is the list form, not an indexed key.
			continue
		}
		i, err := strconv.Atoi(suffix)
		if err != nil {
			return nil, &cerrors.ConfigError{Option: key, Message: "column index is not numeric", Err: err}
		}
		if i <= 0 {
			return nil, cerrors.NewConfig(key, "column index must be positive")
		}
		if _, dup := cols[i]; dup {
			return nil, cerrors.NewConfig(key, "column index is duplicated")
		}
		cols[i] = props[k]
	}
	return FromIndexed(cols)
}

// Len returns the number of declared columns including the token column.
func (s *Schema) Len() int { return len(s.names) }

// Names returns a copy of the column names.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// NameFor returns the annotation name of field i. Fields past the declared
// columns map to Fallback.
func (s *Schema) NameFor(i int) string {
	if i >= 0 && i < len(s.names) {
		return s.names[i]
	}
	return Fallback
}

// Extra returns the declared columns that are neither the token column nor
// a reserved annotation, in declaration order.
func (s *Schema) Extra() []string {
	var out []string
	for _, n := range s.names[1:] {
		if n == model.POSName || n == model.LemmaName {
			continue
		}
		out = append(out, n)
	}
	return out
}

// String returns the names joined by commas.
func (s *Schema) String() string {
	return strings.Join(s.names, ",")
}
