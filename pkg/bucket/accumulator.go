package bucket

import "iter"

// pendingBucket holds the records of one bucket that have not been emitted yet.
type pendingBucket[R any] struct {
	records []R
	maxLen  int
	total   int
}

// Accumulator is the push form of the grouping algorithm. Records are
// added one at a time and a batch is handed back as soon as its bucket
// fills up. It is not safe for concurrent use.
type Accumulator[R any] struct {
	bounds    Bounds
	lengthOf  func(R) int
	batchSize int
	pending   []pendingBucket[R]
	count     int
}

func newAccumulator[R any](bounds Bounds, lengthOf func(R) int, batchSize int) *Accumulator[R] {
	return &Accumulator[R]{
		bounds:    bounds,
		lengthOf:  lengthOf,
		batchSize: batchSize,
		pending:   make([]pendingBucket[R], bounds.Buckets()),
	}
}

// Add places r in its bucket. If that bucket reached the batch size, the
// full batch is returned with ok set and the bucket starts over empty.
func (a *Accumulator[R]) Add(r R) (b Batch[R], ok bool) {
	n := a.lengthOf(r)
	id := a.bounds.BucketID(n)

	p := &a.pending[id]
	p.records = append(p.records, r)
	p.total += n
	if n > p.maxLen {
		p.maxLen = n
	}
	a.count++

	if len(p.records) < a.batchSize {
		return Batch[R]{}, false
	}
	return a.flush(id), true
}

// Drain yields the remaining records of every non-empty bucket in ascending
// bucket order, overflow last. Buckets are cleared as they are yielded, so
// a Drain stopped early can be resumed.
func (a *Accumulator[R]) Drain() iter.Seq[Batch[R]] {
	return func(yield func(Batch[R]) bool) {
		for id := range a.pending {
			if len(a.pending[id].records) == 0 {
				continue
			}
			if !yield(a.flush(id)) {
				return
			}
		}
	}
}

// Pending returns the number of records added but not yet emitted.
func (a *Accumulator[R]) Pending() int {
	return a.count
}

// HasPending returns true if there are records waiting to be emitted.
func (a *Accumulator[R]) HasPending() bool {
	return a.count > 0
}

// Reset discards all pending records.
func (a *Accumulator[R]) Reset() {
	clear(a.pending)
	a.count = 0
}

// BatchSize returns the configured capacity per batch.
func (a *Accumulator[R]) BatchSize() int {
	return a.batchSize
}

// flush detaches the records of bucket id into a Batch.
func (a *Accumulator[R]) flush(id int) Batch[R] {
	p := a.pending[id]
	a.pending[id] = pendingBucket[R]{}
	a.count -= len(p.records)
	return Batch[R]{
		Bucket:      id,
		Records:     p.records,
		MaxLength:   p.maxLen,
		TotalLength: p.total,
	}
}
