package model

import (
	"fmt"
	"math/bits"
)

// MaxColumns is the widest table Dirty can track.
const MaxColumns = 64

// Dirty is a set of column indices. It is a plain value, so copying a model
// copies its dirty state.
type Dirty uint64

// Set marks column i.
func (d *Dirty) Set(i int) {
	checkIndex(i)
	*d |= 1 << uint(i)
}

// Unset clears column i.
func (d *Dirty) Unset(i int) {
	checkIndex(i)
	*d &^= 1 << uint(i)
}

// Clear empties the set.
func (d *Dirty) Clear() {
	*d = 0
}

// Has reports whether column i is marked.
func (d Dirty) Has(i int) bool {
	if i < 0 || i >= MaxColumns {
		return false
	}
	return d&(1<<uint(i)) != 0
}

// Len returns the number of marked columns.
func (d Dirty) Len() int {
	return bits.OnesCount64(uint64(d))
}

// Indexes returns the marked columns in ascending order.
func (d Dirty) Indexes() []int {
	out := make([]int, 0, d.Len())
	for v := uint64(d); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

// All returns a set with the first n columns marked.
func All(n int) Dirty {
	if n >= MaxColumns {
		return ^Dirty(0)
	}
	return Dirty(1)<<uint(n) - 1
}

func checkIndex(i int) {
	if i < 0 || i >= MaxColumns {
		panic(fmt.Sprintf("model: column index %d out of range", i))
	}
}
