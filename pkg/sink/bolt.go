package sink

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketPrefix = "bucket-"

// BoltSink stores envelopes in a bbolt file: one bbolt bucket per length
// bucket, keyed by the bbolt bucket's own big-endian sequence. Keys keep
// growing across reopens, so later runs append to earlier ones.
type BoltSink struct {
	db    *bbolt.DB
	codec Codec
}

// NewBoltSink opens (or creates) the database at path.
func NewBoltSink(path string, codec Codec) (*BoltSink, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &BoltSink{db: db, codec: codec}, nil
}

// BoltBucketName returns the bbolt bucket that holds a length bucket.
func BoltBucketName(bucket int) string {
	return fmt.Sprintf("%s%03d", boltBucketPrefix, bucket)
}

// Write stores env in its own transaction.
func (s *BoltSink) Write(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %d: %w", env.Seq, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BoltBucketName(env.Bucket)))
		if err != nil {
			return err
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], id)
		return b.Put(key[:], data)
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("store envelope %d: %w", env.Seq, err)
	}
	return nil
}

// Each walks stored envelopes bucket by bucket in insertion order.
func (s *BoltSink) Each(fn func(Envelope) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !strings.HasPrefix(string(name), boltBucketPrefix) {
				return nil
			}
			return b.ForEach(func(_, v []byte) error {
				var env Envelope
				if err := s.codec.Unmarshal(v, &env); err != nil {
					return err
				}
				return fn(env)
			})
		})
	})
}

// Close closes the database.
func (s *BoltSink) Close() error {
	return s.db.Close()
}
