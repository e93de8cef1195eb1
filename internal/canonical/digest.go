package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainValue = "tckrunner/value/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the canonical JSON of v and its domain-separated SHA-256.
func Digest(domain string, v any) (string, []byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, data), data, nil
}
