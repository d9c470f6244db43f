package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FocuswithJustin/ttconv/core/cas"
	"github.com/FocuswithJustin/ttconv/core/diag"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/plugins"
	"github.com/FocuswithJustin/ttconv/core/sqlite"
	"github.com/FocuswithJustin/ttconv/core/xml"
	"github.com/FocuswithJustin/ttconv/internal/config"
	"github.com/FocuswithJustin/ttconv/internal/fileutil"
	"github.com/FocuswithJustin/ttconv/internal/logging"
	"github.com/FocuswithJustin/ttconv/internal/validation"
)

// session is the per-command state built from the globals.
type session struct {
	ctx  context.Context
	cfg  *config.Config
	opts plugins.Options
}

func newSession(g *Globals) (*session, error) {
	ctx, cfg, err := g.setup()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.HandlerOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logging.LoggerFromContext(ctx)
	return &session{ctx: ctx, cfg: cfg, opts: opts}, nil
}

// resolve picks the handler named by format, or the one matching path.
func resolve(path, format string) (*plugins.Plugin, error) {
	if format != "" {
		return plugins.Lookup(format)
	}
	if p, err := plugins.ForPath(path); err == nil {
		return p, nil
	}
	return plugins.DetectFormat(path)
}

func (s *session) decode(path, format string) ([]*model.Document, diag.List, *plugins.Plugin, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid input path: %w", err)
	}
	p, err := resolve(path, format)
	if err != nil {
		return nil, nil, nil, err
	}
	if !p.Manifest.Capabilities.CanDecode {
		return nil, nil, nil, fmt.Errorf("format %s cannot be read", p.Manifest.Format)
	}
	start := time.Now()
	res, err := p.Format.Decode(path, s.opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logging.Conversion(s.ctx, "decode", path, len(res.Documents), len(res.Diagnostics), time.Since(start),
		"format", p.Manifest.Format)
	return res.Documents, res.Diagnostics, p, nil
}

// InspectCmd summarizes the documents of a file.
type InspectCmd struct {
	Path   string `arg:"" help:"Input file" type:"existingfile"`
	Format string `short:"f" help:"Input format (detected when empty)"`
	JSON   bool   `help:"Print the summary as JSON"`
}

type documentSummary struct {
	Name        string            `json:"name"`
	Tokens      int               `json:"tokens"`
	Spans       map[string]int    `json:"spans,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Columns     []string          `json:"columns,omitempty"`
}

type inspectSummary struct {
	Path        string            `json:"path"`
	Format      string            `json:"format"`
	Documents   []documentSummary `json:"documents"`
	Diagnostics diag.List         `json:"diagnostics,omitempty"`
}

func summarize(doc *model.Document) documentSummary {
	sum := documentSummary{Name: doc.Name(), Tokens: len(doc.Tokens())}
	if spans := doc.Spans(); len(spans) > 0 {
		sum.Spans = make(map[string]int)
		for _, sp := range spans {
			sum.Spans[sp.Name()]++
		}
	}
	if annos := doc.Annotations(); len(annos) > 0 {
		sum.Annotations = make(map[string]string, len(annos))
		for _, a := range annos {
			sum.Annotations[a.Name()] = a.Value()
		}
	}
	seen := make(map[string]bool)
	for _, tok := range doc.Tokens() {
		for _, a := range tok.Annotations() {
			if !seen[a.Name()] {
				seen[a.Name()] = true
				sum.Columns = append(sum.Columns, a.Name())
			}
		}
	}
	return sum
}

func (c *InspectCmd) Run(g *Globals) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	docs, diags, p, err := s.decode(c.Path, c.Format)
	if err != nil {
		return err
	}

	summary := inspectSummary{Path: c.Path, Format: p.Manifest.Format, Diagnostics: diags}
	for _, doc := range docs {
		summary.Documents = append(summary.Documents, summarize(doc))
	}

	if c.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(stdout, "%s (%s): %d document(s)\n", summary.Path, summary.Format, len(summary.Documents))
	for _, d := range summary.Documents {
		fmt.Fprintf(stdout, "  %s: %d tokens", d.Name, d.Tokens)
		if len(d.Spans) > 0 {
			names := make([]string, 0, len(d.Spans))
			for name := range d.Spans {
				names = append(names, name)
			}
			sort.Strings(names)
			parts := make([]string, len(names))
			for i, name := range names {
				parts[i] = fmt.Sprintf("%s=%d", name, d.Spans[name])
			}
			fmt.Fprintf(stdout, ", spans %s", strings.Join(parts, " "))
		}
		if len(d.Columns) > 0 {
			fmt.Fprintf(stdout, ", columns %s", strings.Join(d.Columns, ","))
		}
		fmt.Fprintln(stdout)
	}
	if len(diags) > 0 {
		fmt.Fprintf(stdout, "%d warning(s):\n", len(diags))
		for _, d := range diags {
			fmt.Fprintf(stdout, "  %s\n", d)
		}
	}
	return nil
}

// ConvertCmd converts a file to another format.
type ConvertCmd struct {
	Input  string `arg:"" help:"Input file" type:"existingfile"`
	Output string `arg:"" help:"Output file, or directory when the input holds several documents" type:"path"`
	From   string `help:"Input format (detected when empty)"`
	To     string `help:"Output format (from the output extension when empty)"`
}

func (c *ConvertCmd) Run(g *Globals) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	if err := validation.ValidatePath(c.Output); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	docs, _, _, err := s.decode(c.Input, c.From)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%s contains no documents", c.Input)
	}

	target, err := outputPlugin(c.Output, c.To)
	if err != nil {
		return err
	}
	paths, err := outputPaths(target, c.Output, docs)
	if err != nil {
		return err
	}

	start := time.Now()
	warnings := 0
	for i, doc := range docs {
		res, err := target.Format.Encode(doc, paths[i], s.opts)
		if err != nil {
			return err
		}
		warnings += len(res.Diagnostics)
		logging.DebugContext(s.ctx, "document written", "document", doc.Name(), "path", res.Path,
			"warnings", len(res.Diagnostics))
		fmt.Fprintf(stdout, "%s -> %s\n", doc.Name(), res.Path)
	}
	logging.Conversion(s.ctx, "encode", c.Output, len(docs), warnings, time.Since(start),
		"format", target.Manifest.Format)
	return nil
}

func outputPlugin(path, format string) (*plugins.Plugin, error) {
	var (
		p   *plugins.Plugin
		err error
	)
	if format != "" {
		p, err = plugins.Lookup(format)
	} else {
		p, err = plugins.ForPath(path)
	}
	if err != nil {
		return nil, err
	}
	if !p.Manifest.Capabilities.CanEncode {
		return nil, fmt.Errorf("format %s cannot be written", p.Manifest.Format)
	}
	return p, nil
}

// outputPaths maps documents to files. A single document goes to output;
// several documents go to output/<name><ext>, except for container formats.
func outputPaths(p *plugins.Plugin, output string, docs []*model.Document) ([]string, error) {
	paths := make([]string, len(docs))
	if len(docs) == 1 || isContainer(p) {
		for i := range paths {
			paths[i] = output
		}
		return paths, nil
	}

	ext := ""
	if len(p.Manifest.Extensions) > 0 {
		ext = p.Manifest.Extensions[0]
	}
	if fileutil.CompressionForPath(output) != fileutil.CompressionNone {
		ext += filepath.Ext(output)
		output = fileutil.TrimCompressionExt(output)
	}
	output = strings.TrimSuffix(output, filepath.Ext(output))
	for i, doc := range docs {
		path, err := validation.OutputPath(output, doc.Name(), ext)
		if err != nil {
			return nil, err
		}
		paths[i] = path
	}
	return paths, nil
}

func isContainer(p *plugins.Plugin) bool {
	return p.Manifest.Format == "corpusdb"
}

// VerifyCmd reads a file, writes it back in the same format and compares.
type VerifyCmd struct {
	Path   string `arg:"" help:"Input file" type:"existingfile"`
	Format string `short:"f" help:"Input format (detected when empty)"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	docs, diags, p, err := s.decode(c.Path, c.Format)
	if err != nil {
		return err
	}
	if !p.Manifest.Capabilities.CanEncode {
		return fmt.Errorf("format %s cannot be written", p.Manifest.Format)
	}

	dir, err := os.MkdirTemp("", "ttconv-verify-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logging.WarnContext(s.ctx, "failed to remove temp directory", "path", dir, "error", err)
		}
	}()

	ext := filepath.Ext(fileutil.TrimCompressionExt(c.Path))
	out := filepath.Join(dir, "roundtrip"+ext)
	var written []string
	for i, doc := range docs {
		path := out
		if len(docs) > 1 && !isContainer(p) {
			path = filepath.Join(dir, fmt.Sprintf("roundtrip_%d%s", i, ext))
		}
		if _, err := p.Format.Encode(doc, path, s.opts); err != nil {
			return err
		}
		written = append(written, path)
	}

	var again []*model.Document
	for _, path := range uniq(written) {
		res, err := p.Format.Decode(path, s.opts)
		if err != nil {
			return fmt.Errorf("re-reading %s: %w", filepath.Base(path), err)
		}
		again = append(again, res.Documents...)
	}

	if len(again) != len(docs) {
		return fmt.Errorf("round trip produced %d document(s), want %d", len(again), len(docs))
	}
	for i := range docs {
		again[i].SetName(docs[i].Name())
		if !docs[i].Equal(again[i]) {
			return fmt.Errorf("document %s changed in the round trip", docs[i].Name())
		}
	}
	fmt.Fprintf(stdout, "%s: %d document(s) survive the round trip (%d warning(s))\n", c.Path, len(docs), len(diags))

	if len(written) == 1 && !isContainer(p) {
		before, err := digestText(c.Path, s.cfg.Encoding)
		if err != nil {
			return err
		}
		after, err := digestText(written[0], s.cfg.Encoding)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  input   %s (%d bytes)\n", before.Short(), before.Size)
		fmt.Fprintf(stdout, "  output  %s (%d bytes)\n", after.Short(), after.Size)
		if before.Equal(after) {
			fmt.Fprintln(stdout, "  byte-identical")
		} else {
			logging.InfoContext(s.ctx, "round trip normalized the file", "path", c.Path,
				"input_size", before.Size, "output_size", after.Size)
			fmt.Fprintln(stdout, "  content equal, bytes differ")
		}
	}
	return nil
}

// digestText hashes the decoded text of path.
func digestText(path, charset string) (cas.Digest, error) {
	in, err := fileutil.OpenText(path, charset)
	if err != nil {
		return cas.Digest{}, err
	}
	defer in.Close()
	return cas.SumReader(in)
}

func uniq(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// QueryCmd evaluates XPath over the stand-off XML view of a file.
type QueryCmd struct {
	Path   string `arg:"" help:"Input file" type:"existingfile"`
	XPath  string `arg:"" help:"XPath expression, e.g. //token[anno[@name='pos' and @value='NN']]/@text"`
	Format string `short:"f" help:"Input format (detected when empty)"`
	Dump   bool   `help:"Print the indented stand-off XML instead of querying"`
}

func (c *QueryCmd) Run(g *Globals) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	docs, _, _, err := s.decode(c.Path, c.Format)
	if err != nil {
		return err
	}
	data := xml.Render(docs...)

	if c.Dump {
		pretty, err := xml.Format(data, "  ")
		if err != nil {
			return err
		}
		_, err = stdout.Write(pretty)
		return err
	}

	view, err := xml.Parse(data)
	if err != nil {
		return err
	}
	results, err := view.EvaluateAll(c.XPath)
	if err != nil {
		return fmt.Errorf("evaluating %q: %w", c.XPath, err)
	}
	for _, r := range results {
		fmt.Fprintln(stdout, r)
	}
	return nil
}

// FormatsCmd lists the registered format handlers.
type FormatsCmd struct{}

func (c *FormatsCmd) Run() error {
	for _, p := range plugins.List() {
		m := p.Manifest
		var caps []string
		if m.Capabilities.CanDecode {
			caps = append(caps, "read")
		}
		if m.Capabilities.CanEncode {
			caps = append(caps, "write")
		}
		fmt.Fprintf(stdout, "%-12s %-20s v%-7s %-24s %s\n",
			m.Format, m.PluginID, m.Version, strings.Join(m.Extensions, " "), strings.Join(caps, ","))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "ttconv version %s\n", version)
	fmt.Fprintf(stdout, "sqlite driver %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}
