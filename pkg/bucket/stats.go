package bucket

import (
	"slices"
	"sort"
)

// BucketStats counts what a single bucket emitted.
type BucketStats struct {
	Batches int `json:"batches"`
	Records int `json:"records"`
	// Padding is the number of padded cells across the bucket's batches.
	Padding int `json:"padding"`
}

// Stats accumulates padding accounting over emitted batches.
type Stats struct {
	Batches     int           `json:"batches"`
	Records     int           `json:"records"`
	RealCells   int           `json:"real_cells"`
	PaddedCells int           `json:"padded_cells"`
	PerBucket   []BucketStats `json:"per_bucket"`
}

// NewStats creates Stats sized for the given number of buckets.
func NewStats(buckets int) *Stats {
	return &Stats{PerBucket: make([]BucketStats, buckets)}
}

// Observe records one emitted batch.
func (s *Stats) Observe(b BatchInfo) {
	if b.Bucket >= len(s.PerBucket) {
		s.PerBucket = append(s.PerBucket, make([]BucketStats, b.Bucket+1-len(s.PerBucket))...)
	}
	padded := b.MaxLength * b.Size

	s.Batches++
	s.Records += b.Size
	s.RealCells += b.TotalLength
	s.PaddedCells += padded

	bs := &s.PerBucket[b.Bucket]
	bs.Batches++
	bs.Records += b.Size
	bs.Padding += padded - b.TotalLength
}

// Efficiency returns the share of padded cells that carry real data.
// It is 1 when nothing has been observed.
func (s *Stats) Efficiency() float64 {
	if s.PaddedCells == 0 {
		return 1
	}
	return float64(s.RealCells) / float64(s.PaddedCells)
}

// SuggestBounds derives up to n bucket limits from a sample of lengths by
// cutting it into n+1 groups of roughly equal population. Duplicate cut
// points are collapsed, so fewer than n limits may be returned.
func SuggestBounds(lengths []int, n int) []int {
	if n <= 0 || len(lengths) == 0 {
		return nil
	}
	sorted := slices.Clone(lengths)
	sort.Ints(sorted)

	limits := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		idx := (i*len(sorted)+n)/(n+1) - 1
		if idx < 0 {
			idx = 0
		}
		v := sorted[idx]
		if v < 0 {
			continue
		}
		if len(limits) > 0 && v <= limits[len(limits)-1] {
			continue
		}
		limits = append(limits, v)
	}
	// The largest length needs no limit of its own: it is covered by overflow.
	if len(limits) > 0 && limits[len(limits)-1] >= sorted[len(sorted)-1] {
		limits = limits[:len(limits)-1]
	}
	return limits
}
