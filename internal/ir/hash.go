package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainChart   = "beatline/chart/v1"
	DomainSession = "beatline/session/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash canonically marshals v and hashes it under domain.
// The result is stable across runs given the same content.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustContentHash is like ContentHash but panics on error.
// Use only in tests or when the content is known to be valid.
func MustContentHash(domain string, v any) string {
	h, err := ContentHash(domain, v)
	if err != nil {
		panic(err)
	}
	return h
}
