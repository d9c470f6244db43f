// Package standoff provides the embedded handler for the stand-off XML view
// of documents rendered by core/xml.
package standoff

import (
	"fmt"
	"io"
	"os"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/plugins"
	"github.com/FocuswithJustin/ttconv/core/xml"
	"github.com/FocuswithJustin/ttconv/internal/fileutil"
)

// Format is the registered format name.
const Format = "standoff"

// Handler implements plugins.FormatHandler for stand-off XML.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:       "format.standoff",
		Version:        "1.0.0",
		Format:         Format,
		Extensions:     []string{".xml"},
		MinHostVersion: "0.2.0",
		Capabilities:   plugins.Capabilities{CanDecode: true, CanEncode: true},
	}
}

func init() {
	plugins.MustRegister(&plugins.Plugin{
		Manifest: Manifest(),
		Format:   &Handler{},
	})
}

func readAll(path string) ([]byte, error) {
	in, err := fileutil.OpenText(path, "")
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return io.ReadAll(in)
}

// Detect accepts well-formed XML whose root is <corpus>.
func (h *Handler) Detect(path string) (*plugins.DetectResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("cannot stat: %v", err)}, nil
	}
	if info.IsDir() {
		return &plugins.DetectResult{Reason: "path is a directory"}, nil
	}
	data, err := readAll(path)
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("cannot read: %v", err)}, nil
	}
	if err := xml.WellFormed(data); err != nil {
		return &plugins.DetectResult{Reason: "not well-formed XML"}, nil
	}
	doc, err := xml.Parse(data)
	if err != nil || doc.Root() == nil || doc.Root().Name() != xml.ElemCorpus {
		return &plugins.DetectResult{Reason: "root element is not <corpus>"}, nil
	}
	return &plugins.DetectResult{
		Detected: true,
		Format:   Format,
		Reason:   "stand-off corpus XML detected",
	}, nil
}

// Decode reads all documents of path.
func (h *Handler) Decode(path string, opts plugins.Options) (*plugins.DecodeResult, error) {
	data, err := readAll(path)
	if err != nil {
		return nil, cerrors.NewIO("read", path, err)
	}
	docs, err := xml.Decode(data)
	if err != nil {
		var perr *cerrors.ParseError
		if cerrors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return &plugins.DecodeResult{Documents: docs}, nil
}

// Encode writes doc to path as a one-document corpus.
func (h *Handler) Encode(doc *model.Document, path string, opts plugins.Options) (res *plugins.EncodeResult, err error) {
	if path == "" {
		return nil, cerrors.NewConfig("output", "no output location given")
	}
	if doc == nil {
		return nil, cerrors.NewConfig("document", "no document given")
	}
	out, err := fileutil.CreateText(path, "")
	if err != nil {
		return nil, cerrors.NewIO("create", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			res, err = nil, cerrors.NewIO("close", path, cerr)
		}
	}()
	if _, err := out.Write(xml.Render(doc)); err != nil {
		return nil, cerrors.NewIO("write", path, err)
	}
	return &plugins.EncodeResult{Path: path}, nil
}
