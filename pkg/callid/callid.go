// Package callid allocates the correlation ids that pair a probe request with
// the error message the backend records for it.
package callid

import (
	"math"
	"sync/atomic"
)

// Allocator hands out non-zero uint32 ids in increasing order, wrapping from
// math.MaxUint32 back to 1. It is safe for concurrent use.
type Allocator struct {
	next atomic.Uint32
}

// Default is the process-wide allocator used by the package-level API.
var Default = New()

// New returns an allocator whose first id is 1.
func New() *Allocator {
	return NewAt(1)
}

// NewAt returns an allocator whose first id is start. A start of 0 is treated as 1.
func NewAt(start uint32) *Allocator {
	if start == 0 {
		start = 1
	}
	a := &Allocator{}
	a.next.Store(start)
	return a
}

// Next returns the current id and advances the counter.
func (a *Allocator) Next() uint32 {
	for {
		cur := a.next.Load()
		if cur == 0 {
			// zero value Allocator{}
			if a.next.CompareAndSwap(0, 2) {
				return 1
			}
			continue
		}
		following := cur + 1
		if cur == math.MaxUint32 {
			following = 1
		}
		if a.next.CompareAndSwap(cur, following) {
			return cur
		}
	}
}

// Peek returns the id the next call to Next will return, without advancing.
func (a *Allocator) Peek() uint32 {
	if v := a.next.Load(); v != 0 {
		return v
	}
	return 1
}
