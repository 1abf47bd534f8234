package querydef

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with stored hashes.
const (
	DomainDefinition = "camlkit/definition/v1"
	DomainFragment   = "camlkit/fragment/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalJSON returns the canonical JSON bytes of a definition.
func CanonicalJSON(def *Definition) ([]byte, error) {
	data, err := MarshalCanonical(def.Canonical())
	if err != nil {
		return nil, fmt.Errorf("canonical JSON for %q: %w", def.Name, err)
	}
	return data, nil
}

// Fingerprint identifies a definition by content. Definitions that differ
// only in key order, source file or Unicode normalization share a
// fingerprint.
func Fingerprint(def *Definition) (string, error) {
	data, err := CanonicalJSON(def)
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainDefinition, data), nil
}

// FragmentHash identifies rendered markup.
func FragmentHash(fragment string) string {
	return hashWithDomain(DomainFragment, []byte(fragment))
}
