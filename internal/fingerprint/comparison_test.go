package fingerprint

import (
	"errors"
	"strings"
	"testing"
)

func TestCompare_IdenticalFingerprints(t *testing.T) {
	fingerprint1 := &SchemaFingerprint{Hash: "same_hash_12345"}
	fingerprint2 := &SchemaFingerprint{Hash: "same_hash_12345"}

	if err := Compare(fingerprint1, fingerprint2); err != nil {
		t.Errorf("Identical fingerprints should match, got error: %v", err)
	}
}

func TestCompare_DifferentFingerprints(t *testing.T) {
	fingerprint1 := &SchemaFingerprint{Hash: "hash_12345"}
	fingerprint2 := &SchemaFingerprint{Hash: "hash_67890"}

	err := Compare(fingerprint1, fingerprint2)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Different fingerprints should not match, got: %v", err)
	}

	// Check error message format
	expectedSubstrings := []string{"schema fingerprint mismatch", "hash_1234", "hash_6789"}
	for _, substring := range expectedSubstrings {
		if !strings.Contains(err.Error(), substring) {
			t.Errorf("Error message should contain '%s', got: %s", substring, err.Error())
		}
	}
}

func TestCompare_TruncatesLongHashes(t *testing.T) {
	long := strings.Repeat("a", 64)
	err := Compare(&SchemaFingerprint{Hash: long}, &SchemaFingerprint{Hash: strings.Repeat("b", 64)})
	if err == nil || strings.Contains(err.Error(), strings.Repeat("a", 17)) {
		t.Errorf("expected a truncated preview, got: %v", err)
	}
}
