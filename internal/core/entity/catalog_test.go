package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"matcat/internal/core/apperror"
)

func TestCatalog_Validate(t *testing.T) {
	ctx := context.Background()

	c := NewCatalog("MTL-0001", "Steel Bar")
	assert.NoError(t, c.Validate(ctx))
	assert.True(t, c.IsNew())

	blank := NewCatalog("MTL-0001", "   ")
	err := blank.Validate(ctx)
	assert.True(t, apperror.IsValidation(err))
}

func TestBaseEntity_SetID(t *testing.T) {
	var e Identifiable = &BaseEntity{}
	e.SetID(12)
	assert.Equal(t, int64(12), e.GetID())
}
