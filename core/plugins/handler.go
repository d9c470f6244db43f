// Package plugins holds the registry of format handlers compiled into ttconv.
// Each handler package registers itself from init; importing
// internal/embedded pulls all of them in.
package plugins

import (
	"log/slog"

	"github.com/FocuswithJustin/ttconv/core/columns"
	"github.com/FocuswithJustin/ttconv/core/diag"
	"github.com/FocuswithJustin/ttconv/core/model"
)

// FormatHandler converts between one on-disk format and the document model.
type FormatHandler interface {
	// Detect checks if the given path is handled by this format.
	Detect(path string) (*DetectResult, error)

	// Decode reads every document stored at path.
	Decode(path string, opts Options) (*DecodeResult, error)

	// Encode writes one document to path.
	Encode(doc *model.Document, path string, opts Options) (*EncodeResult, error)
}

// Options carries the conversion settings shared by all handlers. Handlers
// ignore the fields that do not apply to them.
type Options struct {
	MetaTag string
	Charset string
	Columns *columns.Schema
	// OmitAnyAnnotation drops generic annotation columns on write.
	OmitAnyAnnotation bool

	// Graph mapping, used by handlers that go through core/graph.
	Separator               string
	PrefixSpanAnnotations   bool
	ReplaceGenericSpanNames bool

	Logger *slog.Logger
}

// DetectResult is the outcome of FormatHandler.Detect.
type DetectResult struct {
	Detected bool   `json:"detected"`
	Format   string `json:"format,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// DecodeResult is the outcome of FormatHandler.Decode.
type DecodeResult struct {
	Documents   []*model.Document
	Diagnostics diag.List
}

// EncodeResult is the outcome of FormatHandler.Encode.
type EncodeResult struct {
	Path        string
	Diagnostics diag.List
}

// Manifest describes a registered handler.
type Manifest struct {
	PluginID   string   `json:"plugin_id"`
	Version    string   `json:"version"`
	Format     string   `json:"format"`
	Extensions []string `json:"extensions,omitempty"`
	// MinHostVersion is the oldest ttconv release the handler works with.
	MinHostVersion string       `json:"min_host_version,omitempty"`
	Capabilities   Capabilities `json:"capabilities"`
}

// Capabilities describes the directions a handler supports.
type Capabilities struct {
	CanDecode bool `json:"can_decode"`
	CanEncode bool `json:"can_encode"`
}
