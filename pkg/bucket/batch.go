package bucket

// Record is anything that can report its length, e.g. a token count.
type Record interface {
	Len() int
}

// Batch is a group of records from a single length bucket.
// Records is owned by the receiver; the grouper keeps no reference to it.
type Batch[R any] struct {
	// Bucket is the index of the length bucket the records fell into.
	Bucket int

	// Records are in input order.
	Records []R

	// MaxLength is the length of the longest record in the batch.
	MaxLength int

	// TotalLength is the sum of all record lengths.
	TotalLength int
}

// Size returns the number of records in the batch.
func (b Batch[R]) Size() int {
	return len(b.Records)
}

// Empty returns true if the batch has no records.
func (b Batch[R]) Empty() bool {
	return len(b.Records) == 0
}

// Padding returns the number of cells wasted when every record is padded
// to MaxLength.
func (b Batch[R]) Padding() int {
	return b.MaxLength*len(b.Records) - b.TotalLength
}

// Info returns the record-free summary of the batch.
func (b Batch[R]) Info() BatchInfo {
	return BatchInfo{
		Bucket:      b.Bucket,
		Size:        len(b.Records),
		MaxLength:   b.MaxLength,
		TotalLength: b.TotalLength,
	}
}

// BatchInfo describes a batch without carrying its records.
type BatchInfo struct {
	Bucket      int
	Size        int
	MaxLength   int
	TotalLength int
}
