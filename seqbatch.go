// Package seqbatch groups variable-length sentences into length-bucketed
// batches so fixed-width consumers pay little padding.
//
// Example usage:
//
//	batches, err := seqbatch.BatchJSONL(file, 64, 5, 10, 20)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range batches {
//	    fmt.Println(b.Bucket, len(b.Records))
//	}
//
// The algorithm itself lives in pkg/bucket and works on any record type.
package seqbatch

import (
	"io"

	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/source"
)

// DefaultBatchSize is the batch size used when none is configured.
const DefaultBatchSize = bucket.DefaultBatchSize

// Bounds holds ascending bucket upper bounds.
type Bounds = bucket.Bounds

// Sentence is a tokenised sentence; its length is its word count.
type Sentence = source.Sentence

// SentenceBatch is one emitted batch of sentences.
type SentenceBatch = bucket.Batch[source.Sentence]

// Errors returned for invalid arguments.
var (
	ErrInvalidBounds    = bucket.ErrInvalidBounds
	ErrInvalidBatchSize = bucket.ErrInvalidBatchSize
)

// NewGrouper returns a sentence grouper for bounds.
func NewGrouper(bounds ...int) (*bucket.Grouper[Sentence], error) {
	return bucket.New[Sentence](bounds...)
}

// BatchJSONL reads every JSONL sentence from r and returns its batches.
// A malformed line fails the whole call.
func BatchJSONL(r io.Reader, batchSize int, bounds ...int) ([]SentenceBatch, error) {
	g, err := NewGrouper(bounds...)
	if err != nil {
		return nil, err
	}
	reader := source.NewJSONLReader(r)
	seq, err := g.Slice(reader.Records(), batchSize)
	if err != nil {
		return nil, err
	}
	var out []SentenceBatch
	for b := range seq {
		out = append(out, b)
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
