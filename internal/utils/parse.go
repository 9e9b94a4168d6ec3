package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile strictly decodes a TOML file into v. Keys that match no field
// are logged and otherwise ignored.
func LoadTOMLFile(path string, v any) error {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	for _, key := range md.Undecoded() {
		log.Warnf("Ignoring unknown key %q in %s", key.String(), path)
	}
	return nil
}

// ParseTOMLMap decodes a TOML file into a generic map, for recovering what
// survives a failed strict decode.
func ParseTOMLMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if _, err := toml.Decode(string(data), &out); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return out, nil
}

// Section extracts a table from decoded TOML
func Section(data map[string]any, name string) (map[string]any, bool) {
	section, ok := data[name].(map[string]any)
	return section, ok
}

// Lookup returns data[key] as a T. TOML integers decode as int64 and are
// converted when T is int.
func Lookup[T any](data map[string]any, key string) (T, bool) {
	var zero T
	raw, ok := data[key]
	if !ok {
		return zero, false
	}
	if n, isInt := raw.(int64); isInt {
		if v, ok := any(int(n)).(T); ok {
			return v, true
		}
	}
	v, ok := raw.(T)
	return v, ok
}

// Assign sets *dst to data[key] when present with the right type.
func Assign[T any](data map[string]any, key string, dst *T) {
	if v, ok := Lookup[T](data, key); ok {
		*dst = v
	}
}
