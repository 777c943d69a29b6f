package util

import (
	"math"
	"sync/atomic"
)

// Sequence hands out int32 identifiers, wrapping back to its floor once math.MaxInt32 has been issued.
//
type Sequence struct {
	floor     int32
	lastValue int32
}

func NewSequence(first int32) *Sequence {
	return &Sequence{floor: first, lastValue: first - 1}
}

func (self *Sequence) Next() int32 {
	for {
		last := atomic.LoadInt32(&self.lastValue)
		next := self.floor
		if last < math.MaxInt32 {
			next = last + 1
		}
		if atomic.CompareAndSwapInt32(&self.lastValue, last, next) {
			return next
		}
	}
}
