package bucket

import "errors"

// Errors returned by constructors and Slice. Check them with errors.Is.
var (
	// ErrInvalidBounds is returned when bounds are negative or not strictly ascending.
	ErrInvalidBounds = errors.New("seqbatch: invalid bucket bounds")

	// ErrInvalidBatchSize is returned when a batch size below one is requested.
	ErrInvalidBatchSize = errors.New("seqbatch: invalid batch size")

	// ErrNilLength is returned when NewFunc is given a nil length accessor.
	ErrNilLength = errors.New("seqbatch: nil length accessor")
)
