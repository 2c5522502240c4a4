// Package numerator provides domain contracts for material code generation.
package numerator

import (
	"fmt"
	"strings"

	"matcat/internal/core/id"
	pkgnumerator "matcat/pkg/numerator"
)

// Strategy defines how concurrent allocations in one category are handled.
type Strategy int

const (
	// StrategyLenient reads the latest code and derives the next one without
	// any cross-request serialization. Two concurrent creates in the same
	// category may receive the same code.
	StrategyLenient Strategy = iota

	// StrategySerialized takes a per-category transaction-scoped lock before
	// reading the latest code, so allocations in a category are sequential.
	StrategySerialized
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategySerialized:
		return "serialized"
	default:
		return "lenient"
	}
}

// ParseStrategy converts a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return StrategyLenient, nil
	case "serialized":
		return StrategySerialized, nil
	}
	return StrategyLenient, fmt.Errorf("unknown numerator strategy %q", s)
}

// Options configures code generation.
type Options struct {
	Strategy Strategy

	// PadWidth is the minimum number of sequence digits (default 4).
	PadWidth int
}

// DefaultOptions returns standard options (Lenient, 4 digits).
func DefaultOptions() Options {
	return Options{
		Strategy: StrategyLenient,
		PadWidth: pkgnumerator.DefaultPadWidth,
	}
}

// Sequence identifies the category a code is allocated in.
type Sequence struct {
	CategoryID id.ID
	Prefix     string
}
