package types

import (
	"fmt"
)

// RangeUint64 is an inclusive range of block numbers.
type RangeUint64 struct {
	From uint64
	To   uint64
}

func (r RangeUint64) String() string {
	return fmt.Sprintf("[%v, %v]", r.From, r.To)
}

// IsValid checks if the range bounds are in ascending order.
func (r RangeUint64) IsValid() bool {
	return r.From <= r.To
}

// Contains checks if the number falls into the range.
func (r RangeUint64) Contains(n uint64) bool {
	return n >= r.From && n <= r.To
}
