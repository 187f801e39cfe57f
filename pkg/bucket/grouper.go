package bucket

import (
	"fmt"
	"iter"
	"slices"
)

// DefaultBatchSize is the batch capacity used when callers have no preference.
const DefaultBatchSize = 32

// Grouper assigns records to length buckets and emits fixed-size batches.
// A Grouper is immutable and may be shared between goroutines; each call
// to Slice or Accumulator owns its own state.
type Grouper[R any] struct {
	bounds   Bounds
	lengthOf func(R) int
}

// New creates a Grouper for records that report their own length.
func New[R Record](limits ...int) (*Grouper[R], error) {
	return NewFunc(func(r R) int { return r.Len() }, limits...)
}

// NewFunc creates a Grouper that measures records with lengthOf.
func NewFunc[R any](lengthOf func(R) int, limits ...int) (*Grouper[R], error) {
	if lengthOf == nil {
		return nil, ErrNilLength
	}
	bounds, err := NewBounds(limits...)
	if err != nil {
		return nil, err
	}
	return &Grouper[R]{bounds: bounds, lengthOf: lengthOf}, nil
}

// WithBounds creates a Grouper over already validated bounds.
func WithBounds[R any](bounds Bounds, lengthOf func(R) int) (*Grouper[R], error) {
	if lengthOf == nil {
		return nil, ErrNilLength
	}
	return &Grouper[R]{bounds: bounds, lengthOf: lengthOf}, nil
}

// Bounds returns the bucket limits of the grouper.
func (g *Grouper[R]) Bounds() Bounds {
	return g.bounds
}

// BucketID returns the bucket a record of the given length belongs to.
func (g *Grouper[R]) BucketID(length int) int {
	return g.bounds.BucketID(length)
}

// Length measures a record the way the grouper does.
func (g *Grouper[R]) Length(r R) int {
	return g.lengthOf(r)
}

// Accumulator returns fresh per-bucket state for pushing records one at a time.
func (g *Grouper[R]) Accumulator(batchSize int) (*Accumulator[R], error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	return newAccumulator(g.bounds, g.lengthOf, batchSize), nil
}

// Slice returns a lazy sequence of batches built from records.
//
// Records are consumed only as the caller ranges over the result, and
// ranging stops pulling input as soon as the loop exits. Every range over
// the returned sequence starts from empty buckets and ranges over records
// again, so it can only be repeated if records itself can.
func (g *Grouper[R]) Slice(records iter.Seq[R], batchSize int) (iter.Seq[Batch[R]], error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	return func(yield func(Batch[R]) bool) {
		acc := newAccumulator(g.bounds, g.lengthOf, batchSize)
		for r := range records {
			if b, ok := acc.Add(r); ok {
				if !yield(b) {
					return
				}
			}
		}
		for b := range acc.Drain() {
			if !yield(b) {
				return
			}
		}
	}, nil
}

// SliceAll groups a slice eagerly and returns every batch.
func (g *Grouper[R]) SliceAll(records []R, batchSize int) ([]Batch[R], error) {
	seq, err := g.Slice(slices.Values(records), batchSize)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
