package config

import (
	"github.com/magiconair/properties"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
)

// propertiesLoader reads legacy .properties files. ${...} references are
// kept literally.
var propertiesLoader = &properties.Loader{
	Encoding:         properties.UTF8,
	DisableExpansion: true,
}

// applyProperties sets every key of a Java-style .properties file in file
// order. Comments, continuation lines and escapes are handled by the loader;
// column<N> keys are collected and resolved later by Schema.
func (c *Config) applyProperties(data []byte) error {
	props, err := propertiesLoader.LoadBytes(data)
	if err != nil {
		return &cerrors.ParseError{Format: "properties", Path: c.path, Message: err.Error(), Err: err}
	}
	for _, key := range props.Keys() {
		val, _ := props.Get(key)
		if err := c.set(key, val); err != nil {
			return err
		}
	}
	return nil
}
