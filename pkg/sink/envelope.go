package sink

import (
	"github.com/google/uuid"

	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/source"
)

// Envelope is the wire form of one emitted batch.
type Envelope struct {
	ID     string `json:"id" msgpack:"id"`
	Seq    uint64 `json:"seq" msgpack:"seq"`
	Source string `json:"source,omitempty" msgpack:"source,omitempty"`

	// Bucket is the length bucket index; BucketMax its inclusive upper
	// bound, or -1 for the overflow bucket.
	Bucket    int `json:"bucket" msgpack:"bucket"`
	BucketMax int `json:"bucket_max" msgpack:"bucket_max"`

	Size      int `json:"size" msgpack:"size"`
	MaxLength int `json:"max_length" msgpack:"max_length"`
	Padding   int `json:"padding" msgpack:"padding"`

	Records []source.Sentence `json:"records" msgpack:"records"`
}

// NewEnvelope wraps a batch. seq numbers envelopes within a run.
func NewEnvelope(seq uint64, src string, bounds bucket.Bounds, b bucket.Batch[source.Sentence]) Envelope {
	_, hi, _ := bounds.Range(b.Bucket)
	return Envelope{
		ID:        uuid.NewString(),
		Seq:       seq,
		Source:    src,
		Bucket:    b.Bucket,
		BucketMax: hi,
		Size:      b.Size(),
		MaxLength: b.MaxLength,
		Padding:   b.Padding(),
		Records:   b.Records,
	}
}
