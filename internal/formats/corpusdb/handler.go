// Package corpusdb provides the embedded handler for SQLite corpus
// databases written by internal/corpusdb.
package corpusdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/graph"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/plugins"
	"github.com/FocuswithJustin/ttconv/internal/corpusdb"
)

// Format is the registered format name.
const Format = "corpusdb"

var sqliteMagic = []byte("SQLite format 3\x00")

// Handler implements plugins.FormatHandler for corpus databases.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:       "format.corpusdb",
		Version:        "1.0.0",
		Format:         Format,
		Extensions:     []string{".db", ".sqlite"},
		MinHostVersion: "0.3.0",
		Capabilities:   plugins.Capabilities{CanDecode: true, CanEncode: true},
	}
}

func init() {
	plugins.MustRegister(&plugins.Plugin{
		Manifest: Manifest(),
		Format:   &Handler{},
	})
}

func graphOptions(opts plugins.Options) graph.Options {
	return graph.Options{
		Separator:               opts.Separator,
		PrefixSpanAnnotations:   opts.PrefixSpanAnnotations,
		ReplaceGenericSpanNames: opts.ReplaceGenericSpanNames,
	}
}

// Detect checks the SQLite header and the corpus schema.
func (h *Handler) Detect(path string) (*plugins.DetectResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("cannot open: %v", err)}, nil
	}
	header := make([]byte, len(sqliteMagic))
	_, err = io.ReadFull(f, header)
	f.Close()
	if err != nil || !bytes.Equal(header, sqliteMagic) {
		return &plugins.DetectResult{Reason: "not a SQLite database"}, nil
	}

	store, err := corpusdb.OpenReadOnly(path)
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("not a corpus database: %v", err)}, nil
	}
	store.Close()
	return &plugins.DetectResult{
		Detected: true,
		Format:   Format,
		Reason:   "SQLite corpus database detected",
	}, nil
}

// Decode loads every document stored in path.
func (h *Handler) Decode(path string, opts plugins.Options) (*plugins.DecodeResult, error) {
	store, err := corpusdb.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	docs, err := store.LoadAll(context.Background(), graphOptions(opts))
	if err != nil {
		return nil, err
	}
	return &plugins.DecodeResult{Documents: docs}, nil
}

// Encode adds doc to the database at path, creating it if needed. A stored
// document with the same name is replaced.
func (h *Handler) Encode(doc *model.Document, path string, opts plugins.Options) (res *plugins.EncodeResult, err error) {
	if path == "" {
		return nil, cerrors.NewConfig("output", "no output location given")
	}
	if doc == nil {
		return nil, cerrors.NewConfig("document", "no document given")
	}
	store, err := corpusdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			res, err = nil, cerrors.NewIO("close", path, cerr)
		}
	}()
	if err := store.Save(context.Background(), doc, graphOptions(opts)); err != nil {
		return nil, err
	}
	return &plugins.EncodeResult{Path: path}, nil
}
