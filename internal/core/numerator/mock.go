package numerator

import (
	"context"

	pkgnumerator "matcat/pkg/numerator"
)

// MockGenerator is a test implementation of Generator.
// Without NextCodeFunc it behaves as if every category were empty.
type MockGenerator struct {
	NextCodeFunc func(ctx context.Context, seq Sequence) (pkgnumerator.Allocation, error)
	Calls        []Sequence
}

// NextCode implements Generator.
func (m *MockGenerator) NextCode(ctx context.Context, seq Sequence) (pkgnumerator.Allocation, error) {
	m.Calls = append(m.Calls, seq)
	if m.NextCodeFunc != nil {
		return m.NextCodeFunc(ctx, seq)
	}
	return pkgnumerator.Allocate(seq.Prefix, nil), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
