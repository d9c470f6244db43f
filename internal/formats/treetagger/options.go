// Package treetagger reads and writes the TreeTagger tabular format: one
// token per line with tab-separated annotation columns, interleaved with
// start and end tags for spans and documents.
package treetagger

import (
	"log/slog"

	"github.com/FocuswithJustin/ttconv/core/columns"
	"github.com/FocuswithJustin/ttconv/core/encoding"
)

// DefaultMetaTag is the tag name that delimits documents.
const DefaultMetaTag = "meta"

// Options configures a Reader or Writer.
type Options struct {
	// MetaTag names the document start/end tags. Matched case-insensitively
	// on read.
	MetaTag string
	// Charset of the file. Empty means UTF-8.
	Charset string
	// Schema maps row fields to annotation names. Nil means columns.Default().
	Schema *columns.Schema
	// OmitAnyAnnotation drops generic annotations instead of writing them as
	// extra columns. The zero value exports them.
	OmitAnyAnnotation bool
	// Logger receives structural warnings. Nil uses the global logger.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MetaTag: DefaultMetaTag,
		Charset: encoding.DefaultCharset,
		Schema:  columns.Default(),
	}
}

func (o Options) withDefaults() Options {
	if o.MetaTag == "" {
		o.MetaTag = DefaultMetaTag
	}
	if o.Schema == nil {
		o.Schema = columns.Default()
	}
	return o
}
