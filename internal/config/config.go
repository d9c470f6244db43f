// Package config holds converter settings loaded from a TOML file, a legacy
// Java-style .properties file, or defaults, and overridden from the command
// line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/FocuswithJustin/ttconv/core/columns"
	"github.com/FocuswithJustin/ttconv/core/encoding"
	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/graph"
	"github.com/FocuswithJustin/ttconv/core/plugins"
)

// Recognized keys. Legacy camelCase spellings are accepted as aliases.
const (
	KeyMetaTag                 = "meta_tag"
	KeyEncoding                = "encoding"
	KeyColumns                 = "columns"
	KeyExportAnyAnnotation     = "export_any_annotation"
	KeySeparator               = "separator"
	KeyPrefixSpanAnnotations   = "prefix_span_annotations"
	KeyReplaceGenericSpanNames = "replace_generic_span_names"
	KeyLogLevel                = "log_level"
	KeyLogFormat               = "log_format"
)

var aliases = map[string]string{
	"metatag":                 KeyMetaTag,
	"fileencoding":            KeyEncoding,
	"exportanyannotation":     KeyExportAnyAnnotation,
	"separator":               KeySeparator,
	"prefixspanannotations":   KeyPrefixSpanAnnotations,
	"replacegenericspannames": KeyReplaceGenericSpanNames,
	"loglevel":                KeyLogLevel,
	"logformat":               KeyLogFormat,
	"log.level":               KeyLogLevel,
	"log.format":              KeyLogFormat,
}

// Config is the converter configuration.
type Config struct {
	MetaTag                 string
	Encoding                string
	Columns                 []string
	ExportAnyAnnotation     bool
	Separator               string
	PrefixSpanAnnotations   bool
	ReplaceGenericSpanNames bool
	LogLevel                string
	LogFormat               string

	// indexed holds legacy column<N> entries until Schema resolves them.
	indexed map[string]string
	path    string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MetaTag:             "meta",
		Encoding:            encoding.DefaultCharset,
		ExportAnyAnnotation: true,
		Separator:           graph.DefaultSeparator,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Load reads path on top of the defaults. The format follows the extension:
// ".toml" or ".properties".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.NewIO("read", path, err)
	}
	c := Default()
	c.path = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = c.applyTOML(data)
	case ".properties", ".props":
		err = c.applyProperties(data)
	default:
		return nil, cerrors.NewUnsupported("config", fmt.Sprintf("unknown file type %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }

func (c *Config) applyTOML(data []byte) error {
	raw := make(map[string]any)
	if err := toml.Unmarshal(data, &raw); err != nil {
		return &cerrors.ParseError{Format: "TOML", Path: c.path, Message: err.Error(), Err: err}
	}
	return c.setAll("", raw)
}

// setAll flattens nested tables into dotted keys.
func (c *Config) setAll(prefix string, raw map[string]any) error {
	for key, val := range raw {
		if sub, ok := val.(map[string]any); ok {
			if err := c.setAll(prefix+key+".", sub); err != nil {
				return err
			}
			continue
		}
		if err := c.set(prefix+key, val); err != nil {
			return err
		}
	}
	return nil
}

// Set assigns one option by key. It is used by file loaders and command-line
// overrides alike.
func (c *Config) Set(key, value string) error {
	return c.set(key, value)
}

func (c *Config) set(key string, val any) error {
	name := normalizeKey(key)
	if isIndexedColumn(name) {
		s, err := asString(key, val)
		if err != nil {
			return err
		}
		if c.indexed == nil {
			c.indexed = make(map[string]string)
		}
		c.indexed[name] = s
		return nil
	}

	var err error
	switch name {
	case KeyMetaTag:
		c.MetaTag, err = asString(key, val)
	case KeyEncoding:
		c.Encoding, err = asString(key, val)
	case KeyColumns:
		c.Columns, err = asList(key, val)
	case KeyExportAnyAnnotation:
		c.ExportAnyAnnotation, err = asBool(key, val)
	case KeySeparator:
		c.Separator, err = asString(key, val)
	case KeyPrefixSpanAnnotations:
		c.PrefixSpanAnnotations, err = asBool(key, val)
	case KeyReplaceGenericSpanNames:
		c.ReplaceGenericSpanNames, err = asBool(key, val)
	case KeyLogLevel:
		c.LogLevel, err = asString(key, val)
	case KeyLogFormat:
		c.LogFormat, err = asString(key, val)
	default:
		return cerrors.NewConfig(key, "unknown option")
	}
	return err
}

// Validate checks option values that can be checked without input.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MetaTag) == "" {
		return cerrors.NewConfig(KeyMetaTag, "must not be empty")
	}
	if strings.ContainsAny(c.MetaTag, " \t<>/") {
		return cerrors.NewConfig(KeyMetaTag, fmt.Sprintf("%q is not a tag name", c.MetaTag))
	}
	if _, err := encoding.Charset(c.Encoding); err != nil {
		return &cerrors.ConfigError{Option: KeyEncoding, Message: fmt.Sprintf("unknown charset %q", c.Encoding), Err: err}
	}
	_, err := c.Schema()
	return err
}

// Schema resolves the column schema. The list form and the legacy indexed
// form are mutually exclusive.
func (c *Config) Schema() (*columns.Schema, error) {
	if len(c.Columns) > 0 && len(c.indexed) > 0 {
		return nil, cerrors.NewConfig(KeyColumns, "both a column list and column<N> keys are set")
	}
	if len(c.indexed) > 0 {
		return columns.ParseIndexed(c.indexed)
	}
	return columns.FromList(c.Columns)
}

// HandlerOptions converts the configuration into format handler options.
func (c *Config) HandlerOptions() (plugins.Options, error) {
	schema, err := c.Schema()
	if err != nil {
		return plugins.Options{}, err
	}
	return plugins.Options{
		MetaTag:                 c.MetaTag,
		Charset:                 c.Encoding,
		Columns:                 schema,
		OmitAnyAnnotation:       !c.ExportAnyAnnotation,
		Separator:               c.Separator,
		PrefixSpanAnnotations:   c.PrefixSpanAnnotations,
		ReplaceGenericSpanNames: c.ReplaceGenericSpanNames,
	}, nil
}

func normalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.TrimPrefix(k, "treetagger.")
	if alias, ok := aliases[k]; ok {
		return alias
	}
	return strings.ReplaceAll(k, "-", "_")
}

func isIndexedColumn(key string) bool {
	return strings.HasPrefix(key, columns.IndexedPrefix) && key != KeyColumns
}

func asString(key string, val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case int64, float64, bool:
		return fmt.Sprint(v), nil
	}
	return "", cerrors.NewConfig(key, fmt.Sprintf("expected a string, got %T", val))
}

func asBool(key string, val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, &cerrors.ConfigError{Option: key, Message: fmt.Sprintf("%q is not a boolean", v), Err: err}
		}
		return b, nil
	}
	return false, cerrors.NewConfig(key, fmt.Sprintf("expected a boolean, got %T", val))
}

// asList accepts a TOML array or a comma-separated string.
func asList(key string, val any) ([]string, error) {
	switch v := val.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, cerrors.NewConfig(key, fmt.Sprintf("expected a list of strings, got %T", item))
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return nil, cerrors.NewConfig(key, fmt.Sprintf("expected a list, got %T", val))
}
