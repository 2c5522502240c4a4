package entity

import (
	"context"

	"matcat/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Identifiable is implemented by entities whose ID is assigned by the store.
type Identifiable interface {
	GetID() id.ID
	SetID(id.ID)
}

// BaseEntity contains the fields shared by all persisted entities.
type BaseEntity struct {
	// ID is the primary key (BIGINT identity, zero until inserted)
	ID id.ID `db:"id" json:"id"`
}

// GetID returns the entity identifier.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// SetID stores the identifier returned by INSERT ... RETURNING id.
func (b *BaseEntity) SetID(v id.ID) {
	b.ID = v
}

// IsNew reports whether the entity has not been persisted yet.
func (b *BaseEntity) IsNew() bool {
	return id.IsNil(b.ID)
}
