package bindings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// overridesFile is the TOML layout of a key override file:
//
//	[keys]
//	next = ["right", "j"]
//	prev = ["left", "k"]
type overridesFile struct {
	Keys map[string][]string `toml:"keys"`
}

// LoadOverrides reads action key overrides from path. A missing file is not
// an error and yields no overrides.
func LoadOverrides(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes the TOML override layout.
func ParseOverrides(data []byte) (map[string][]string, error) {
	var f overridesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse key overrides: %w", err)
	}
	return f.Keys, nil
}
