package source

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"id": "s1", "words": ["EU", "rejects", "German", "call"]}

{"id": 7, "words": ["Peter", "Blackburn"], "tags": ["B-PER", "I-PER"]}
{"words": []}
`

func TestJSONLReader_Records(t *testing.T) {
	r := NewJSONLReader(strings.NewReader(sample))
	got := slices.Collect(r.Records())
	require.NoError(t, r.Err())

	require.Len(t, got, 3)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, 4, got[0].Len())
	assert.Equal(t, "7", got[1].ID)
	assert.Equal(t, []string{"B-PER", "I-PER"}, got[1].Tags)
	assert.Equal(t, 0, got[2].Len())
	assert.Equal(t, 4, r.Lines())
}

func TestJSONLReader_Malformed(t *testing.T) {
	input := "{\"words\": [\"a\"]}\nnot json\n{\"words\": [\"b\"]}\n"

	r := NewJSONLReader(strings.NewReader(input))
	got := slices.Collect(r.Records())
	assert.Len(t, got, 1)
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "line 2")
}

func TestJSONLReader_MissingWords(t *testing.T) {
	r := NewJSONLReader(strings.NewReader(`{"text": "no tokens"}`))
	assert.Empty(t, slices.Collect(r.Records()))
	assert.True(t, errors.Is(r.Err(), ErrMissingWords))
}

func TestJSONLReader_Lenient(t *testing.T) {
	input := "{\"words\": [\"a\"]}\nnot json\n{\"id\": \"x\"}\n{\"words\": [\"b\", \"c\"]}\n"

	var skippedLines []int
	r := NewJSONLReader(strings.NewReader(input),
		WithLenient(true),
		WithSkipHook(func(line int, err error) { skippedLines = append(skippedLines, line) }),
	)
	got := slices.Collect(r.Records())
	require.NoError(t, r.Err())
	assert.Len(t, got, 2)
	assert.Equal(t, 2, r.Skipped())
	assert.Equal(t, []int{2, 3}, skippedLines)
}

func TestJSONLReader_LineTooLong(t *testing.T) {
	long := `{"words": ["` + strings.Repeat("x", 200) + `"]}`
	r := NewJSONLReader(strings.NewReader(long), WithMaxLineBytes(64))
	assert.Empty(t, slices.Collect(r.Records()))
	assert.Error(t, r.Err())
}

func TestJSONLReader_StopEarly(t *testing.T) {
	r := NewJSONLReader(strings.NewReader(sample))
	for range r.Records() {
		break
	}
	assert.NoError(t, r.Err())
	assert.Equal(t, 1, r.Lines())
}
