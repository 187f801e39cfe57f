// Package bucket groups variable-length records into fixed-size batches by
// length bucket.
//
// Records of similar length end up in the same batch, so that downstream
// fixed-width processing (for example a sequence model that pads every
// batch to its longest member) wastes little space on padding.
//
// # Usage
//
// Define a record type that reports its length, then slice a sequence:
//
//	type Sentence struct{ Words []string }
//
//	func (s Sentence) Len() int { return len(s.Words) }
//
//	g, err := bucket.New[Sentence](5, 10, 20)
//	if err != nil {
//	    return err
//	}
//	batches, err := g.Slice(slices.Values(sentences), 32)
//	if err != nil {
//	    return err
//	}
//	for b := range batches {
//	    // b.Records all fall into the same length bucket
//	}
//
// # Buckets
//
// Bounds are inclusive upper limits. With bounds 5, 10, 20 there are four
// buckets: lengths 0..5, 6..10, 11..20 and the overflow bucket for
// everything longer than 20.
//
// # Emission order
//
// Records are processed in input order. A bucket is emitted as soon as it
// holds batchSize records. When the input ends, every non-empty bucket is
// drained in ascending bucket order, overflow last.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package bucket
