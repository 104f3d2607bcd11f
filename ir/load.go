package ir

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a model document (YAML or JSON) from disk
func LoadFile(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	db, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return db, nil
}

// Parse decodes a model document. JSON documents are accepted since they are valid YAML.
// Unknown keys are rejected so that typos in hand-edited models surface early.
func Parse(data []byte) (*Database, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	db := &Database{}
	if err := decoder.Decode(db); err != nil {
		return nil, err
	}
	Normalize(db)
	return db, nil
}
