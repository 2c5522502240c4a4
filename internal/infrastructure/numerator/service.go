// Package numerator implements material code generation on top of the
// material store. It implements core/numerator.Generator.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"matcat/internal/core/id"
	corenumerator "matcat/internal/core/numerator"
	"matcat/pkg/logger"
	pkgnumerator "matcat/pkg/numerator"
)

var tracer = otel.Tracer("matcat/numerator")

// ErrNoLocker is returned when the serialized strategy is configured without a Locker.
var ErrNoLocker = errors.New("serialized numerator strategy requires a locker")

// CodeSource reads the latest code allocated in a category.
type CodeSource interface {
	LatestCodeInCategory(ctx context.Context, categoryID id.ID) (string, bool, error)
}

// Locker takes a lock that lives until the caller's transaction ends.
type Locker interface {
	AdvisoryLock(ctx context.Context, key int64) error
}

// Observer is notified of every allocation.
type Observer interface {
	RecordAllocation(prefix string, reset bool)
}

// Service derives the next code from the latest one stored in the category.
type Service struct {
	source   CodeSource
	locker   Locker
	observer Observer
	opts     corenumerator.Options
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// Option customizes a Service.
type Option func(*Service)

// WithLocker sets the locker used by the serialized strategy.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithObserver sets the allocation observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// New creates a numerator service.
func New(source CodeSource, opts corenumerator.Options, options ...Option) *Service {
	if opts.PadWidth <= 0 {
		opts.PadWidth = pkgnumerator.DefaultPadWidth
	}
	s := &Service{
		source: source,
		opts:   opts,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// NextCode implements corenumerator.Generator.
func (s *Service) NextCode(ctx context.Context, seq corenumerator.Sequence) (pkgnumerator.Allocation, error) {
	ctx, span := tracer.Start(ctx, "numerator.next_code")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("category.id", seq.CategoryID),
		attribute.String("numerator.strategy", s.opts.Strategy.String()),
	)

	alloc, err := s.nextCode(ctx, seq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return pkgnumerator.Allocation{}, err
	}

	span.SetAttributes(attribute.String("material.code", alloc.Code))
	return alloc, nil
}

func (s *Service) nextCode(ctx context.Context, seq corenumerator.Sequence) (pkgnumerator.Allocation, error) {
	if s.opts.Strategy == corenumerator.StrategySerialized {
		if s.locker == nil {
			return pkgnumerator.Allocation{}, ErrNoLocker
		}
		// Category ids are positive, so the key space does not collide with other users.
		if err := s.locker.AdvisoryLock(ctx, seq.CategoryID); err != nil {
			return pkgnumerator.Allocation{}, fmt.Errorf("lock category %d: %w", seq.CategoryID, err)
		}
	}

	code, ok, err := s.source.LatestCodeInCategory(ctx, seq.CategoryID)
	if err != nil {
		return pkgnumerator.Allocation{}, fmt.Errorf("latest code in category %d: %w", seq.CategoryID, err)
	}

	var latest *string
	if ok {
		latest = &code
	}
	alloc := pkgnumerator.AllocateWidth(seq.Prefix, latest, s.opts.PadWidth)

	if alloc.Reset {
		logger.Warn(ctx, "malformed material code, restarting sequence",
			"category_id", seq.CategoryID,
			"prefix", seq.Prefix,
			"latest_code", code,
			"next_code", alloc.Code)
	}
	if s.observer != nil {
		s.observer.RecordAllocation(seq.Prefix, alloc.Reset)
	}

	return alloc, nil
}
