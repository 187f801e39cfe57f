package bucket_test

import (
	"fmt"
	"slices"

	"github.com/bft-labs/seqbatch/pkg/bucket"
)

type sentence struct {
	words []string
}

func (s sentence) Len() int { return len(s.words) }

func ExampleGrouper_Slice() {
	g, err := bucket.New[sentence](2, 4)
	if err != nil {
		panic(err)
	}

	input := []sentence{
		{words: []string{"hi"}},
		{words: []string{"a", "b", "c", "d", "e"}},
		{words: []string{"hello", "there"}},
		{words: []string{"one", "two", "three"}},
		{words: []string{"ok"}},
		{words: []string{"1", "2", "3", "4", "5", "6"}},
	}

	batches, err := g.Slice(slices.Values(input), 2)
	if err != nil {
		panic(err)
	}
	for b := range batches {
		lengths := make([]int, b.Size())
		for i, s := range b.Records {
			lengths[i] = s.Len()
		}
		fmt.Println(b.Bucket, lengths)
	}
	// Output:
	// 0 [1 2]
	// 2 [5 6]
	// 0 [1]
	// 1 [3]
}

func ExampleBounds_BucketID() {
	b, _ := bucket.NewBounds(5, 10, 20)
	for _, n := range []int{3, 5, 6, 10, 11, 25} {
		fmt.Print(b.BucketID(n), " ")
	}
	fmt.Println()
	// Output: 0 0 1 1 2 3
}
