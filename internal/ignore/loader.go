package ignore

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileName is the default name of the ignore file
const FileName = ".schemasyncignore"

// fileConfig represents the TOML structure of the ignore file
type fileConfig struct {
	Tables tableConfig `toml:"tables,omitempty"`
}

type tableConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// Load loads the ignore file from the current directory.
// Returns nil if the file doesn't exist (ignore functionality is optional).
func Load() (*Config, error) {
	return LoadFromPath(FileName)
}

// LoadFromPath loads an ignore file from the specified path
func LoadFromPath(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if _, err := toml.DecodeFile(filePath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return &Config{Tables: cfg.Tables.Patterns}, nil
}
