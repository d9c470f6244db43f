// Command ttconv converts, inspects and verifies TreeTagger tabular files
// and the formats they map to.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ttconv/core/plugins"
	"github.com/FocuswithJustin/ttconv/internal/config"
	"github.com/FocuswithJustin/ttconv/internal/logging"

	// Register the built-in format handlers.
	_ "github.com/FocuswithJustin/ttconv/internal/embedded"
)

const version = plugins.HostVersion

// stdout receives command results; logs go to stderr.
var stdout io.Writer = os.Stdout

// Globals are the flags shared by every command.
type Globals struct {
	Config    string   `name:"config" short:"c" help:"Configuration file (.toml or .properties)" type:"existingfile"`
	LogLevel  string   `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string   `name:"log-format" help:"Log format (text, json)"`
	MetaTag   string   `name:"meta-tag" help:"Document tag name (default meta)"`
	Encoding  string   `name:"encoding" short:"e" help:"Character encoding of tabular files (default UTF-8)"`
	Columns   []string `name:"columns" help:"Column names after the token column, e.g. pos,lemma,morph" sep:","`
	NoExtra   bool     `name:"no-extra-columns" help:"Do not write generic annotation columns"`
}

// CLI defines the command-line interface for ttconv.
var CLI struct {
	Globals

	Inspect InspectCmd `cmd:"" help:"Summarize the documents of a file"`
	Convert ConvertCmd `cmd:"" help:"Convert a file to another format"`
	Verify  VerifyCmd  `cmd:"" help:"Check that a file survives a round trip"`
	Query   QueryCmd   `cmd:"" help:"Evaluate an XPath expression over the stand-off view"`
	Formats FormatsCmd `cmd:"" help:"List registered formats"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// setup loads the configuration, applies flag overrides and initializes the
// logger. The returned context carries the run ID.
func (g *Globals) setup() (context.Context, *config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		loaded, err := config.Load(g.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	overrides := map[string]string{
		config.KeyMetaTag:   g.MetaTag,
		config.KeyEncoding:  g.Encoding,
		config.KeyLogLevel:  g.LogLevel,
		config.KeyLogFormat: g.LogFormat,
	}
	for key, val := range overrides {
		if val == "" {
			continue
		}
		if err := cfg.Set(key, val); err != nil {
			return nil, nil, err
		}
	}
	if len(g.Columns) > 0 {
		cfg.Columns = g.Columns
	}
	if g.NoExtra {
		cfg.ExportAnyAnnotation = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
	ctx := logging.StartRun(context.Background())
	logging.DebugContext(ctx, "configuration loaded", "path", cfg.Path(), "meta_tag", cfg.MetaTag, "encoding", cfg.Encoding)
	return ctx, cfg, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ttconv"),
		kong.Description("TreeTagger tabular format converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&CLI.Globals),
	)
	err := ctx.Run()
	if err != nil {
		logging.Error("command failed", "command", ctx.Command(), "error", err)
	}
	ctx.FatalIfErrorf(err)
}
