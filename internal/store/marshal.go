package store

import (
	"fmt"
	"time"

	"github.com/roach88/tckrunner/internal/canonical"
	"github.com/roach88/tckrunner/internal/dto"
)

// EncodeValue returns the canonical JSON of a wire value and its digest.
// A nil value encodes to empty strings, stored as NULL.
func EncodeValue(v *dto.ValueDTO) (data, digest string, err error) {
	if v == nil {
		return "", "", nil
	}
	hash, raw, err := canonical.Digest(canonical.DomainValue, v.Canonical())
	if err != nil {
		return "", "", fmt.Errorf("encode value: %w", err)
	}
	return string(raw), hash, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
