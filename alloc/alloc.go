// Package alloc is the free-block finder (spec.md 4.3). The teacher's own
// allocator (alloc.Alloc) scans a bitmap starting from a rotating cursor to
// spread wear and avoid always retrying the same contended bit; that
// liveness concern doesn't apply to spec.md's ten-block, single-volume
// world, where determinism given a free-list snapshot matters more than
// avoiding retries. So this allocator keeps the teacher's "hold a lock,
// scan, return the first fit" idiom but drops the rotating cursor:
// Find always starts from index 0 and returns the first n free indices in
// ascending order.
package alloc

import (
	"sync"

	"github.com/mnfs/tinyfsd/layout"
)

// Allocator tracks which of the layout.MaxBlocks data blocks are free. All
// methods are safe for concurrent use. fsmanager's WRITE calls Find once
// holding only F[name] (its early space check) and again under G.write
// after releasing the old chain; the internal mutex also keeps the type
// safe to use standalone, e.g. from tests.
type Allocator struct {
	mu   sync.Mutex
	free [layout.MaxBlocks]bool
}

// New returns an Allocator with every block marked free.
func New() *Allocator {
	a := &Allocator{}
	for i := range a.free {
		a.free[i] = true
	}
	return a
}

// Load replaces the free-list state wholesale, e.g. after rebuilding it
// from the chain-node table on startup (spec.md 4.7).
func (a *Allocator) Load(free [layout.MaxBlocks]bool) {
	a.mu.Lock()
	a.free = free
	a.mu.Unlock()
}

// Snapshot returns a copy of the current free-list state.
func (a *Allocator) Snapshot() [layout.MaxBlocks]bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.free
}

// IsFree reports whether block k is currently unallocated.
func (a *Allocator) IsFree(k int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.free[k]
}

// Find returns the first n free block indices in ascending order, or
// (nil, false) if fewer than n blocks are free. It does not mark the
// returned blocks allocated — that happens when the chain engine installs
// them, under the caller's own lock.
func (a *Allocator) Find(n int) ([]int, bool) {
	if n == 0 {
		return nil, true
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make([]int, 0, n)
	for k := 0; k < layout.MaxBlocks && len(result) < n; k++ {
		if a.free[k] {
			result = append(result, k)
		}
	}
	if len(result) < n {
		return nil, false
	}
	return result, true
}

// SetFree marks block k free or allocated.
func (a *Allocator) SetFree(k int, free bool) {
	a.mu.Lock()
	a.free[k] = free
	a.mu.Unlock()
}

// CountFree returns how many blocks are currently free.
func (a *Allocator) CountFree() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, f := range a.free {
		if f {
			n++
		}
	}
	return n
}
