package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultMaxLineBytes bounds a single JSONL line.
const DefaultMaxLineBytes = 4 << 20

// ErrMissingWords is reported for lines that lack a "words" array.
var ErrMissingWords = errors.New("seqbatch: record has no words field")

// JSONLReader decodes sentences from newline-delimited JSON.
//
// Like bufio.Scanner, it reports failures after the fact: range over
// Records, then check Err.
type JSONLReader struct {
	r            io.Reader
	lenient      bool
	maxLineBytes int

	err     error
	line    int
	skipped int
	onSkip  func(line int, err error)
}

// ReaderOption configures a JSONLReader.
type ReaderOption func(*JSONLReader)

// WithLenient makes malformed lines count as skipped instead of stopping the read.
func WithLenient(lenient bool) ReaderOption {
	return func(r *JSONLReader) { r.lenient = lenient }
}

// WithMaxLineBytes overrides DefaultMaxLineBytes.
func WithMaxLineBytes(n int) ReaderOption {
	return func(r *JSONLReader) {
		if n > 0 {
			r.maxLineBytes = n
		}
	}
}

// WithSkipHook is called for every line dropped in lenient mode.
func WithSkipHook(fn func(line int, err error)) ReaderOption {
	return func(r *JSONLReader) { r.onSkip = fn }
}

// NewJSONLReader creates a reader over r.
func NewJSONLReader(r io.Reader, opts ...ReaderOption) *JSONLReader {
	jr := &JSONLReader{r: r, maxLineBytes: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(jr)
	}
	return jr
}

// Records returns the sentences as a lazy, single-pass sequence.
// Blank lines are ignored.
func (jr *JSONLReader) Records() iter.Seq[Sentence] {
	return func(yield func(Sentence) bool) {
		sc := bufio.NewScanner(jr.r)
		sc.Buffer(make([]byte, 0, 64*1024), jr.maxLineBytes)

		for sc.Scan() {
			jr.line++
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}

			s, err := decodeSentence(line)
			if err != nil {
				if jr.lenient {
					jr.skipped++
					if jr.onSkip != nil {
						jr.onSkip(jr.line, err)
					}
					continue
				}
				jr.err = fmt.Errorf("line %d: %w", jr.line, err)
				return
			}

			if !yield(s) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			jr.err = fmt.Errorf("line %d: %w", jr.line+1, err)
		}
	}
}

// Err returns the error that stopped Records, if any.
func (jr *JSONLReader) Err() error {
	return jr.err
}

// Lines returns the number of lines read so far, blank ones included.
func (jr *JSONLReader) Lines() int {
	return jr.line
}

// Skipped returns the number of malformed lines dropped in lenient mode.
func (jr *JSONLReader) Skipped() int {
	return jr.skipped
}

func decodeSentence(line []byte) (Sentence, error) {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Words *[]string       `json:"words"`
		Tags  []string        `json:"tags"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Sentence{}, err
	}
	if raw.Words == nil {
		return Sentence{}, ErrMissingWords
	}

	s := Sentence{Words: *raw.Words, Tags: raw.Tags}
	if len(raw.ID) > 0 {
		// ids may be numbers or strings
		var str string
		if err := json.Unmarshal(raw.ID, &str); err == nil {
			s.ID = str
		} else {
			s.ID = string(raw.ID)
		}
	}
	return s, nil
}
