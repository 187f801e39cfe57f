package sink

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// WriterSink streams envelopes to an io.Writer.
//
// JSON envelopes are written one per line. Binary codecs are framed with a
// 4-byte big-endian length prefix.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	codec  Codec
	closed bool
}

// NewWriterSink writes to w. If w is also an io.Closer and own is true,
// Close closes it.
func NewWriterSink(w io.Writer, codec Codec, own bool) *WriterSink {
	s := &WriterSink{w: w, codec: codec}
	if c, ok := w.(io.Closer); ok && own {
		s.closer = c
	}
	return s
}

// Write encodes env and writes it as one frame.
func (s *WriterSink) Write(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %d: %w", env.Seq, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.codec.(JSONCodec); ok {
		data = append(data, '\n')
	} else {
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], uint32(len(data)))
		if _, err := s.w.Write(prefix[:]); err != nil {
			return fmt.Errorf("write envelope %d: %w", env.Seq, err)
		}
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write envelope %d: %w", env.Seq, err)
	}
	return nil
}

// Close closes the underlying writer if the sink owns it.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// ReadFrames decodes a stream produced by WriterSink with a binary codec.
func ReadFrames(r io.Reader, codec Codec, fn func(Envelope) error) error {
	var prefix [4]byte
	for {
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		data := make([]byte, binary.BigEndian.Uint32(prefix[:]))
		if _, err := io.ReadFull(r, data); err != nil {
			return err
		}
		var env Envelope
		if err := codec.Unmarshal(data, &env); err != nil {
			return err
		}
		if err := fn(env); err != nil {
			return err
		}
	}
}
