// Package chain implements the block-chain read/write algorithms of
// spec.md 4.5: walking a file's linked list of block indices to read its
// content, releasing that list back to the free pool, and installing a
// freshly allocated list for a new write.
//
// The install/release shape draws on the teacher's wal.circular
// Append/logBlocks and on buf.Buf.WriteDirect, which is where "mutate in
// memory, then push the same bytes to disk" originates in the teacher.
// Install goes block by block: it updates the block's chain node in memory
// and on disk, then writes that block's slice of the content.
package chain

import (
	"github.com/mnfs/tinyfsd/alloc"
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/disk"
	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/layout"
	"github.com/mnfs/tinyfsd/util"
)

// Engine performs chain algorithms against a backing device.
type Engine struct {
	dev *disk.Device
}

// NewEngine returns an Engine bound to dev.
func NewEngine(dev *disk.Device) *Engine {
	return &Engine{dev: dev}
}

// freeNode is the on-disk/in-memory representation of an unallocated slot.
var freeNode = codec.ChainNode{BlockIndex: layout.NoBlock, Next: layout.NoBlock}

// walk follows the chain starting at first, calling visit for each block
// index in order. It stops at a NoBlock terminator and rejects a chain that
// cycles or references an out-of-range index, per spec.md 4.5's corruption
// defense.
func walk(nodes *Table, first int16, visit func(k int) error) error {
	seen := make(map[int]bool, layout.MaxBlocks)
	cur := first
	for cur != layout.NoBlock {
		k := int(cur)
		if k < 0 || k >= layout.MaxBlocks {
			return fserr.New(fserr.Corrupt, "chain references an out-of-range block index")
		}
		if seen[k] {
			return fserr.New(fserr.Corrupt, "chain contains a cycle")
		}
		seen[k] = true
		// Read the link before visiting: Release's visit resets node k.
		next := nodes.Get(k).Next
		if err := visit(k); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// Release walks the chain rooted at first, zeroing each visited block's
// data, resetting its chain node to free on disk and in memory, and
// returning it to free. It is idempotent when first is layout.NoBlock.
func (e *Engine) Release(nodes *Table, free *alloc.Allocator, first int16) error {
	return walk(nodes, first, func(k int) error {
		if err := e.dev.WriteZeros(layout.BlockOffset(k), layout.BlockSize); err != nil {
			return fserr.Wrap(fserr.IO, "zeroing released block", err)
		}
		if err := e.dev.WriteAt(layout.ChainNodeOffset(k), codec.EncodeChainNode(freeNode)); err != nil {
			return fserr.Wrap(fserr.IO, "clearing chain node on disk", err)
		}
		nodes.Set(k, freeNode)
		free.SetFree(k, true)
		util.DPrintf(10, "chain: released block %d\n", k)
		return nil
	})
}

// Install allocates the given block indices to a new chain carrying
// content, persisting each chain node and each block's data, then returns
// the chain's head (or layout.NoBlock if content is empty). It does not
// touch the inode; the caller persists size/first_block afterward.
func (e *Engine) Install(nodes *Table, free *alloc.Allocator, blocks []int, content []byte) (int16, error) {
	if len(content) == 0 {
		return layout.NoBlock, nil
	}
	for i, k := range blocks {
		next := layout.NoBlock
		if i < len(blocks)-1 {
			next = int16(blocks[i+1])
		}
		node := codec.ChainNode{BlockIndex: int16(k), Next: next}

		free.SetFree(k, false)
		nodes.Set(k, node)
		if err := e.dev.WriteAt(layout.ChainNodeOffset(k), codec.EncodeChainNode(node)); err != nil {
			return 0, fserr.Wrap(fserr.IO, "writing chain node", err)
		}

		lo := i * layout.BlockSize
		hi := lo + layout.BlockSize
		if hi > len(content) {
			hi = len(content)
		}
		if err := e.dev.WriteAt(layout.BlockOffset(k), content[lo:hi]); err != nil {
			return 0, fserr.Wrap(fserr.IO, "writing block data", err)
		}
		util.DPrintf(10, "chain: installed block %d (next=%d)\n", k, next)
	}
	return int16(blocks[0]), nil
}

// Read returns the size bytes of content reachable from first. size == 0
// returns an empty slice without touching the data region.
func (e *Engine) Read(nodes *Table, first int16, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, 0, size)
	remaining := size
	err := walk(nodes, first, func(k int) error {
		if remaining <= 0 {
			return nil
		}
		n := util.Min(layout.BlockSize, remaining)
		buf := make([]byte, n)
		if err := e.dev.ReadExact(layout.BlockOffset(k), buf); err != nil {
			return fserr.Wrap(fserr.IO, "reading block data", err)
		}
		out = append(out, buf...)
		remaining -= n
		return nil
	})
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, fserr.New(fserr.Corrupt, "chain is shorter than the inode's recorded size")
	}
	return out, nil
}
