package plugins

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
)

// HostVersion is the version of the handler host.
const HostVersion = "0.3.0"

// ErrIncompatibleVersion is returned when a handler requires a newer host.
var ErrIncompatibleVersion = errors.New("incompatible plugin version")

// Plugin pairs a handler with its manifest.
type Plugin struct {
	Manifest *Manifest
	Format   FormatHandler
}

// registry holds all registered plugins by format name.
var registry = make(map[string]*Plugin)

// Register adds p under its format name. A plugin requiring a newer host is
// rejected.
func Register(p *Plugin) error {
	if p == nil || p.Manifest == nil || p.Manifest.Format == "" {
		return cerrors.NewConfig("plugin", "manifest with a format name is required")
	}
	if err := CheckCompatibility(p.Manifest, HostVersion); err != nil {
		return err
	}
	registry[strings.ToLower(p.Manifest.Format)] = p
	return nil
}

// MustRegister is Register for init functions.
func MustRegister(p *Plugin) {
	if err := Register(p); err != nil {
		panic(err)
	}
}

// Lookup returns the plugin for a format name.
func Lookup(format string) (*Plugin, error) {
	p, ok := registry[strings.ToLower(format)]
	if !ok {
		return nil, cerrors.NewNotFound("format", format)
	}
	return p, nil
}

// Has reports whether a format is registered.
func Has(format string) bool {
	_, ok := registry[strings.ToLower(format)]
	return ok
}

// List returns all plugins sorted by format name.
func List() []*Plugin {
	result := make([]*Plugin, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Manifest.Format < result[j].Manifest.Format
	})
	return result
}

// ClearRegistry removes all plugins (for testing).
func ClearRegistry() {
	registry = make(map[string]*Plugin)
}

// ForPath returns the plugin claiming the extension of path. Compression
// suffixes (.gz, .xz) are looked through.
func ForPath(path string) (*Plugin, error) {
	ext := pathExt(path)
	for _, p := range List() {
		for _, e := range p.Manifest.Extensions {
			if strings.EqualFold(e, ext) {
				return p, nil
			}
		}
	}
	return nil, cerrors.NewNotFound("format for extension", ext)
}

// DetectFormat asks every decoding plugin whether it handles path and
// returns the first that does, in format-name order.
func DetectFormat(path string) (*Plugin, error) {
	var reasons []string
	for _, p := range List() {
		if !p.Manifest.Capabilities.CanDecode {
			continue
		}
		res, err := p.Format.Detect(path)
		if err != nil {
			return nil, cerrors.Wrapf(err, "detect %s", p.Manifest.Format)
		}
		if res.Detected {
			return p, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", p.Manifest.Format, res.Reason))
	}
	return nil, &cerrors.NotFoundError{
		Resource: "format",
		ID:       fmt.Sprintf("%s (%s)", path, strings.Join(reasons, "; ")),
	}
}

// CheckCompatibility checks a manifest's minimum host version.
func CheckCompatibility(m *Manifest, hostVersion string) error {
	if m.MinHostVersion == "" {
		return nil
	}
	host, err := ParseVersion(hostVersion)
	if err != nil {
		return fmt.Errorf("invalid host version %q: %w", hostVersion, err)
	}
	minRequired, err := ParseVersion(m.MinHostVersion)
	if err != nil {
		return fmt.Errorf("invalid min_host_version %q in plugin %s: %w",
			m.MinHostVersion, m.PluginID, err)
	}
	if !host.IsCompatibleWith(minRequired) {
		return fmt.Errorf("%w: plugin %s requires host version %s, but current version is %s",
			ErrIncompatibleVersion, m.PluginID, minRequired, host)
	}
	return nil
}

func pathExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" || ext == ".xz" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return ext
}
