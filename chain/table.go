package chain

import (
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/layout"
)

// Table is the in-memory mirror of the chain-node table (spec.md 3), one
// slot per data block. Like inode.Table it holds no lock of its own; G
// guards it.
type Table struct {
	nodes [layout.MaxBlocks]codec.ChainNode
}

// NewTable returns a Table with every slot marked free ((-1, -1)).
func NewTable() *Table {
	t := &Table{}
	for i := range t.nodes {
		t.nodes[i] = codec.ChainNode{BlockIndex: layout.NoBlock, Next: layout.NoBlock}
	}
	return t
}

// Get returns chain-node slot k.
func (t *Table) Get(k int) codec.ChainNode {
	return t.nodes[k]
}

// Set overwrites chain-node slot k.
func (t *Table) Set(k int, n codec.ChainNode) {
	t.nodes[k] = n
}

// FreeList derives the spec.md free_list array from block_index fields:
// free[k] == true iff node_table[k].block_index < 0 (spec.md 4.7, 9).
func (t *Table) FreeList() [layout.MaxBlocks]bool {
	var free [layout.MaxBlocks]bool
	for i, n := range t.nodes {
		free[i] = n.BlockIndex < 0
	}
	return free
}
