package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/schemasync/schemasync/ir"
)

// SchemaFingerprint represents a fingerprint of a database model
type SchemaFingerprint struct {
	Hash string `json:"hash"` // SHA256 of the canonical model
}

// canonicalModel is the part of a model that affects generated DDL. Table order does not
// matter to the diff, so tables are sorted by identity before hashing.
type canonicalModel struct {
	DatabaseType string      `json:"databaseType"`
	Tables       []*ir.Table `json:"tables"`
}

// ComputeFingerprint generates a fingerprint for the given model
func ComputeFingerprint(db *ir.Database) (*SchemaFingerprint, error) {
	if db == nil {
		return nil, fmt.Errorf("failed to compute schema hash: model is nil")
	}

	tables := make([]*ir.Table, len(db.Tables))
	copy(tables, db.Tables)
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Key() < tables[j].Key()
	})

	hash, err := hashObject(canonicalModel{DatabaseType: db.DatabaseType, Tables: tables})
	if err != nil {
		return nil, fmt.Errorf("failed to compute schema hash: %w", err)
	}

	return &SchemaFingerprint{
		Hash: hash,
	}, nil
}

// hashObject computes a SHA256 hash of any object
func hashObject(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// String returns a human-readable representation of the fingerprint
func (f *SchemaFingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Schema fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Schema fingerprint: %s", f.Hash)
}
