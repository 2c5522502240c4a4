package numerator

import (
	"context"

	pkgnumerator "matcat/pkg/numerator"
)

// Generator produces the next material code for a category.
// Implementations live in the infrastructure layer.
//
// NextCode must be called inside the transaction that persists the material,
// so the read of the latest code and the write share one scope.
type Generator interface {
	NextCode(ctx context.Context, seq Sequence) (pkgnumerator.Allocation, error)
}
