// Package id provides the identifier type shared by all catalog entities.
// Identifiers are assigned by the database (BIGINT identity columns).
package id

import (
	"fmt"
	"strconv"
)

// ID is a store-assigned, positive, monotonically increasing identifier.
type ID = int64

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("parse id %q: must be positive", s)
	}
	return v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsNil checks if ID is the zero value (not yet assigned).
func IsNil(id ID) bool {
	return id == 0
}

// String formats an ID for logs and error details.
func String(id ID) string {
	return strconv.FormatInt(id, 10)
}
