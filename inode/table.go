// Package inode is the in-memory mirror of the inode table (spec.md 3-4.4):
// a fixed array of layout.MaxFiles slots, with linear name lookup and
// free-slot search. It holds no lock of its own — spec.md 4.6/9 make the
// global lock G the sole guard of this table's memory, so every method here
// assumes the caller already holds the appropriate G hold, the same
// division of responsibility the teacher draws between its buf.Buf (dumb
// data) and the txn/obj layers that serialize access to it.
package inode

import (
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/layout"
)

// Table is the fixed array of inode slots.
type Table struct {
	slots [layout.MaxFiles]codec.Inode
}

// New returns a Table with every slot empty.
func New() *Table {
	return &Table{}
}

// Get returns the inode at slot i.
func (t *Table) Get(i int) codec.Inode {
	return t.slots[i]
}

// Set overwrites slot i.
func (t *Table) Set(i int, e codec.Inode) {
	t.slots[i] = e
}

// Clear resets slot i to empty.
func (t *Table) Clear(i int) {
	t.slots[i] = codec.Inode{}
}

// FindByName returns the slot index holding name, or (-1, false).
func (t *Table) FindByName(name string) (int, bool) {
	for i, e := range t.slots {
		if !e.Empty() && e.Name == name {
			return i, true
		}
	}
	return -1, false
}

// FindFreeSlot returns the lowest empty slot index, or (-1, false) if the
// table is full.
func (t *Table) FindFreeSlot() (int, bool) {
	for i, e := range t.slots {
		if e.Empty() {
			return i, true
		}
	}
	return -1, false
}

// Names returns the names of occupied slots in slot order.
func (t *Table) Names() []string {
	var names []string
	for _, e := range t.slots {
		if !e.Empty() {
			names = append(names, e.Name)
		}
	}
	return names
}

// Count returns how many slots are occupied.
func (t *Table) Count() int {
	n := 0
	for _, e := range t.slots {
		if !e.Empty() {
			n++
		}
	}
	return n
}
