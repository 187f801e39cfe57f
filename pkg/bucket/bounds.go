package bucket

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Bounds is an ordered list of inclusive bucket upper limits.
// A Bounds with n limits describes n+1 buckets; the last one catches every
// length greater than the largest limit.
type Bounds struct {
	limits []int
}

// NewBounds validates and stores a copy of the given limits.
// Limits must be non-negative and strictly ascending. No limits at all is
// valid and yields a single overflow bucket.
func NewBounds(limits ...int) (Bounds, error) {
	for i, l := range limits {
		if l < 0 {
			return Bounds{}, fmt.Errorf("%w: bound %d is negative (%d)", ErrInvalidBounds, i, l)
		}
		if i > 0 && l <= limits[i-1] {
			return Bounds{}, fmt.Errorf("%w: bound %d (%d) does not exceed bound %d (%d)",
				ErrInvalidBounds, i, l, i-1, limits[i-1])
		}
	}
	return Bounds{limits: slices.Clone(limits)}, nil
}

// ParseBounds parses a comma separated list such as "5,10,20".
// Blank input yields empty bounds.
func ParseBounds(s string) (Bounds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewBounds()
	}
	parts := strings.Split(s, ",")
	limits := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Bounds{}, fmt.Errorf("%w: %q: %v", ErrInvalidBounds, p, err)
		}
		limits = append(limits, v)
	}
	return NewBounds(limits...)
}

// BucketID returns the index of the first limit that is >= length.
// Lengths above every limit map to the overflow bucket, whose index equals Len().
func (b Bounds) BucketID(length int) int {
	for i, l := range b.limits {
		if length <= l {
			return i
		}
	}
	return len(b.limits)
}

// Len returns the number of configured limits.
func (b Bounds) Len() int { return len(b.limits) }

// Buckets returns the number of buckets, overflow included.
func (b Bounds) Buckets() int { return len(b.limits) + 1 }

// Overflow returns the index of the overflow bucket.
func (b Bounds) Overflow() int { return len(b.limits) }

// Range returns the lengths covered by bucket id: lo is exclusive, hi inclusive.
// For the overflow bucket hi is -1 and overflow is true. lo is -1 for bucket 0.
func (b Bounds) Range(id int) (lo, hi int, overflow bool) {
	lo = -1
	if id > 0 && id-1 < len(b.limits) {
		lo = b.limits[id-1]
	}
	if id >= len(b.limits) {
		return lo, -1, true
	}
	return lo, b.limits[id], false
}

// Values returns a copy of the limits.
func (b Bounds) Values() []int { return slices.Clone(b.limits) }

// String formats the bounds the way ParseBounds reads them.
func (b Bounds) String() string {
	parts := make([]string, len(b.limits))
	for i, l := range b.limits {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}
