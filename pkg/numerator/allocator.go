// Package numerator computes category-scoped material codes.
//
// A code has the form PREFIX-NNNN: the category prefix, a dash, and a
// sequence number zero-padded to DefaultPadWidth digits. Sequences of 10000
// and above simply widen. Everything here is pure and safe for concurrent use.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Separator divides the prefix from the sequence number.
	Separator = "-"

	// DefaultPadWidth is the minimum number of sequence digits.
	DefaultPadWidth = 4
)

// Allocation is the result of computing the next code in a category.
type Allocation struct {
	// Code is the formatted code, e.g. "MTL-0007".
	Code string

	// Sequence is the numeric part of Code.
	Sequence int64

	// Reset is true when a previous code existed but could not be parsed,
	// so the sequence restarted at 1.
	Reset bool
}

// Next returns the code that follows latest within the prefix's sequence.
// A nil latest starts the sequence at 1.
func Next(prefix string, latest *string) string {
	return Allocate(prefix, latest).Code
}

// Allocate is Next with the details of how the code was derived.
func Allocate(prefix string, latest *string) Allocation {
	return AllocateWidth(prefix, latest, DefaultPadWidth)
}

// AllocateWidth is Allocate with a custom pad width.
func AllocateWidth(prefix string, latest *string, padWidth int) Allocation {
	if latest == nil {
		return Allocation{Code: Format(prefix, padWidth, 1), Sequence: 1}
	}

	seq, ok := ParseSequence(*latest)
	if !ok || seq == maxSequence {
		return Allocation{Code: Format(prefix, padWidth, 1), Sequence: 1, Reset: true}
	}

	next := seq + 1
	return Allocation{Code: Format(prefix, padWidth, next), Sequence: next}
}

const maxSequence = int64(^uint64(0) >> 1)

// ParseSequence extracts the number after the last separator.
// It accepts a non-empty run of ASCII digits with an optional leading '+'.
func ParseSequence(code string) (int64, bool) {
	i := strings.LastIndex(code, Separator)
	if i < 0 {
		return 0, false
	}

	suffix := strings.TrimPrefix(code[i+len(Separator):], "+")
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Format renders prefix and seq as a code.
func Format(prefix string, padWidth int, seq int64) string {
	if padWidth <= 0 {
		padWidth = DefaultPadWidth
	}
	return fmt.Sprintf("%s%s%0*d", prefix, Separator, padWidth, seq)
}
