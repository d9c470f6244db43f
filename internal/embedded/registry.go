// Package embedded links every built-in format handler into the binary.
// Import it for side effects:
//
//	import _ "github.com/FocuswithJustin/ttconv/internal/embedded"
package embedded

import (
	"github.com/FocuswithJustin/ttconv/core/plugins"

	_ "github.com/FocuswithJustin/ttconv/internal/formats/corpusdb"
	_ "github.com/FocuswithJustin/ttconv/internal/formats/standoff"
	_ "github.com/FocuswithJustin/ttconv/internal/formats/treetagger"
)

// IsInitialized reports whether the built-in handlers have registered.
func IsInitialized() bool {
	return PluginCount() > 0
}

// PluginCount returns the number of registered format handlers.
func PluginCount() int {
	return len(plugins.List())
}
