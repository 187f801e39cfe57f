package bucket

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_AddAndDrain(t *testing.T) {
	g, err := New[item](2, 4)
	require.NoError(t, err)

	acc, err := g.Accumulator(2)
	require.NoError(t, err)
	assert.Equal(t, 2, acc.BatchSize())

	var emitted [][]int
	for _, r := range items(1, 5, 2, 3, 1, 6) {
		if b, ok := acc.Add(r); ok {
			emitted = append(emitted, lengthsOf(b))
		}
	}
	assert.Equal(t, [][]int{{1, 2}, {5, 6}}, emitted)
	assert.Equal(t, 2, acc.Pending())
	assert.True(t, acc.HasPending())

	var drained [][]int
	for b := range acc.Drain() {
		drained = append(drained, lengthsOf(b))
	}
	assert.Equal(t, [][]int{{1}, {3}}, drained)
	assert.False(t, acc.HasPending())
	assert.Empty(t, slices.Collect(acc.Drain()))
}

func TestAccumulator_DrainResume(t *testing.T) {
	g, err := New[item](2, 4)
	require.NoError(t, err)
	acc, err := g.Accumulator(10)
	require.NoError(t, err)

	for _, r := range items(1, 3, 5) {
		_, ok := acc.Add(r)
		require.False(t, ok)
	}

	for b := range acc.Drain() {
		assert.Equal(t, 0, b.Bucket)
		break
	}
	assert.Equal(t, 2, acc.Pending())

	rest := slices.Collect(acc.Drain())
	require.Len(t, rest, 2)
	assert.Equal(t, 1, rest[0].Bucket)
	assert.Equal(t, 2, rest[1].Bucket)
}

func TestAccumulator_PendingBound(t *testing.T) {
	g, err := New[item](1, 2, 3)
	require.NoError(t, err)
	acc, err := g.Accumulator(3)
	require.NoError(t, err)

	limit := g.Bounds().Buckets() * acc.BatchSize()
	for i := 0; i < 1000; i++ {
		acc.Add(item{id: i, n: i % 5})
		require.Less(t, acc.Pending(), limit)
	}
}

func TestAccumulator_Reset(t *testing.T) {
	g, err := New[item](2)
	require.NoError(t, err)
	acc, err := g.Accumulator(4)
	require.NoError(t, err)

	acc.Add(item{n: 1})
	acc.Add(item{n: 3})
	acc.Reset()

	assert.Equal(t, 0, acc.Pending())
	assert.Empty(t, slices.Collect(acc.Drain()))
}

func TestGrouper_Accumulator_InvalidBatchSize(t *testing.T) {
	g, err := New[item]()
	require.NoError(t, err)

	_, err = g.Accumulator(0)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}
