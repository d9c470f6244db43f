package treetagger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/plugins"
	"github.com/FocuswithJustin/ttconv/core/tag"
	"github.com/FocuswithJustin/ttconv/internal/fileutil"
)

// Format is the registered format name.
const Format = "treetagger"

// Handler implements plugins.FormatHandler for the tabular format.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:       "format.treetagger",
		Version:        "1.0.0",
		Format:         Format,
		Extensions:     []string{".tt", ".tab", ".treetagger"},
		MinHostVersion: "0.1.0",
		Capabilities:   plugins.Capabilities{CanDecode: true, CanEncode: true},
	}
}

func init() {
	plugins.MustRegister(&plugins.Plugin{
		Manifest: Manifest(),
		Format:   &Handler{},
	})
}

// OptionsFrom converts the shared handler options.
func OptionsFrom(opts plugins.Options) Options {
	return Options{
		MetaTag:           opts.MetaTag,
		Charset:           opts.Charset,
		Schema:            opts.Columns,
		OmitAnyAnnotation: opts.OmitAnyAnnotation,
		Logger:            opts.Logger,
	}
}

// detectLines is how many non-blank lines Detect inspects.
const detectLines = 20

// Detect accepts files whose first lines are tags or tab-separated rows.
func (h *Handler) Detect(path string) (*plugins.DetectResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("cannot stat: %v", err)}, nil
	}
	if info.IsDir() {
		return &plugins.DetectResult{Reason: "path is a directory"}, nil
	}

	in, err := fileutil.OpenText(path, "")
	if err != nil {
		return &plugins.DetectResult{Reason: fmt.Sprintf("cannot read: %v", err)}, nil
	}
	defer in.Close()

	sc := bufio.NewScanner(in)
	seen, rows := 0, 0
	for sc.Scan() && seen < detectLines {
		line := strings.TrimPrefix(strings.TrimSuffix(sc.Text(), "\r"), utf8BOM)
		if strings.TrimSpace(line) == "" || tag.IsProcessingInstruction(line) {
			continue
		}
		seen++
		switch {
		case tag.IsStartTag(line), tag.IsEndTag(line):
		case strings.Contains(line, "\t"):
			rows++
		default:
			return &plugins.DetectResult{Reason: fmt.Sprintf("line is neither tag nor tab-separated row: %.40q", line)}, nil
		}
	}
	if rows == 0 {
		return &plugins.DetectResult{Reason: "no tab-separated rows"}, nil
	}
	return &plugins.DetectResult{
		Detected: true,
		Format:   Format,
		Reason:   "TreeTagger tabular rows detected",
	}, nil
}

// Decode reads all documents of path.
func (h *Handler) Decode(path string, opts plugins.Options) (*plugins.DecodeResult, error) {
	r := NewReader(OptionsFrom(opts))
	docs, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &plugins.DecodeResult{Documents: docs, Diagnostics: r.Diagnostics()}, nil
}

// Encode writes doc to path.
func (h *Handler) Encode(doc *model.Document, path string, opts plugins.Options) (*plugins.EncodeResult, error) {
	w := NewWriter(OptionsFrom(opts))
	if err := w.WriteFile(path, doc); err != nil {
		return nil, err
	}
	return &plugins.EncodeResult{Path: path, Diagnostics: w.Diagnostics()}, nil
}
