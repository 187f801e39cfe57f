package sink

import (
	"context"
	"errors"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("seqbatch: sink closed")

// Sink delivers envelopes to their destination.
type Sink interface {
	// Write delivers one envelope. It returns only after the envelope was
	// accepted by the destination or delivery failed for good.
	Write(ctx context.Context, env Envelope) error

	// Close flushes and releases the destination.
	Close() error
}
