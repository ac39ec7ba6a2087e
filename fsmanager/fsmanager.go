// Package fsmanager is the FS manager facade (spec.md 4.7): the only
// public entry point for CREATE, WRITE, READ, DELETE, LIST (plus the
// SPEC_FULL additions STAT and Info). It owns the in-memory tables, the
// lock manager and the backing device, and is the sole place that
// coordinates all four.
//
// The shape — one owned struct constructed once, holding every mutable
// table and a lock manager, with each public method acquiring locks in a
// fixed order before touching memory or disk — mirrors the teacher's
// jrnl.Op/obj.Log split, generalized down to this system's non-transactional
// model per spec.md's Non-goals (no journaling, no crash-atomic multi-block
// updates).
package fsmanager

import (
	"github.com/mnfs/tinyfsd/alloc"
	"github.com/mnfs/tinyfsd/chain"
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/disk"
	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/inode"
	"github.com/mnfs/tinyfsd/layout"
	"github.com/mnfs/tinyfsd/lockmap"
	"github.com/mnfs/tinyfsd/util"
)

// FS is the file system facade. Construct one with Open; call Close exactly
// once at shutdown.
type FS struct {
	dev    *disk.Device
	locks  *lockmap.Manager
	inodes *inode.Table
	nodes  *chain.Table
	free   *alloc.Allocator
	chain  *chain.Engine

	// Name and ConfiguredSize are accepted for constructor signature
	// compatibility (spec.md 6, 9) and are never consulted for layout.
	Name           string
	ConfiguredSize int64
	path           string
}

// Open constructs or loads the file system backed by the file at
// backingPath. configuredSize is accepted but ignored; the on-disk layout
// is always the one fixed by the layout package.
func Open(backingPath, fsName string, configuredSize int64) (*FS, error) {
	dev, err := disk.Open(backingPath)
	if err != nil {
		return nil, fserr.Wrap(fserr.IO, "opening backing file", err)
	}

	fs := &FS{
		dev:            dev,
		locks:          lockmap.New(),
		inodes:         inode.New(),
		nodes:          chain.NewTable(),
		free:           alloc.New(),
		Name:           fsName,
		ConfiguredSize: configuredSize,
		path:           backingPath,
	}
	fs.chain = chain.NewEngine(dev)

	size, err := dev.Size()
	if err != nil {
		dev.Close()
		return nil, fserr.Wrap(fserr.IO, "statting backing file", err)
	}

	if size == 0 {
		if err := fs.initFresh(); err != nil {
			dev.Close()
			return nil, err
		}
	} else {
		if err := fs.loadExisting(); err != nil {
			dev.Close()
			return nil, err
		}
	}

	util.DPrintf(1, "fsmanager: opened %q (metadata=%d data-start=%d volume=%d)\n",
		backingPath, layout.MetadataSize, layout.DataStart, layout.VolumeSize)
	return fs, nil
}

// Close releases the backing file descriptor. Call exactly once, at
// process shutdown (spec.md 4.7's "process-exit hook").
func (fs *FS) Close() error {
	return fs.dev.Close()
}

// initFresh lays down a brand-new, empty volume: zeroed inode slots, every
// chain node marked free, truncated to the fixed volume length.
func (fs *FS) initFresh() error {
	if err := fs.dev.Truncate(layout.VolumeSize); err != nil {
		return fserr.Wrap(fserr.IO, "truncating fresh volume", err)
	}
	zeroInode := codec.EncodeInode(codec.Inode{})
	for i := 0; i < layout.MaxFiles; i++ {
		if err := fs.dev.WriteAt(layout.InodeOffset(i), zeroInode); err != nil {
			return fserr.Wrap(fserr.IO, "initializing inode table", err)
		}
	}
	freeNode := codec.EncodeChainNode(codec.ChainNode{BlockIndex: layout.NoBlock, Next: layout.NoBlock})
	for k := 0; k < layout.MaxBlocks; k++ {
		if err := fs.dev.WriteAt(layout.ChainNodeOffset(k), freeNode); err != nil {
			return fserr.Wrap(fserr.IO, "initializing chain-node table", err)
		}
	}
	if err := fs.dev.Sync(); err != nil {
		return fserr.Wrap(fserr.IO, "syncing fresh volume", err)
	}
	util.DPrintf(1, "fsmanager: initialized fresh volume at %q\n", fs.path)
	return nil
}

// loadExisting reads every inode and chain-node slot off disk, creates
// F[name] for every file found, rebuilds the free list from the chain-node
// table (spec.md 4.7, 9: free[k] = node_table[k].block_index < 0), and
// validates the invariants of spec.md 3.
func (fs *FS) loadExisting() error {
	names := make(map[string]bool, layout.MaxFiles)
	for i := 0; i < layout.MaxFiles; i++ {
		raw := make([]byte, layout.InodeSize)
		if err := fs.dev.ReadExact(layout.InodeOffset(i), raw); err != nil {
			return fserr.Wrap(fserr.IO, "reading inode table", err)
		}
		e, err := codec.DecodeInode(raw)
		if err != nil {
			return err
		}
		if !e.Empty() {
			if names[e.Name] {
				return fserr.New(fserr.Corrupt, "duplicate file name on disk: "+e.Name)
			}
			names[e.Name] = true
			if e.Size < 0 || int(e.Size) > layout.MaxFileBytes {
				return fserr.New(fserr.Corrupt, "inode size out of range: "+e.Name)
			}
			fs.locks.GLock()
			fs.locks.EnsureFileLock(e.Name)
			fs.locks.GUnlock()
		}
		fs.inodes.Set(i, e)
	}

	for k := 0; k < layout.MaxBlocks; k++ {
		raw := make([]byte, layout.ChainNodeSize)
		if err := fs.dev.ReadExact(layout.ChainNodeOffset(k), raw); err != nil {
			return fserr.Wrap(fserr.IO, "reading chain-node table", err)
		}
		n, err := codec.DecodeChainNode(raw)
		if err != nil {
			return err
		}
		fs.nodes.Set(k, n)
	}
	fs.free.Load(fs.nodes.FreeList())

	if err := fs.validateChainLengths(); err != nil {
		return err
	}
	util.DPrintf(1, "fsmanager: loaded existing volume at %q\n", fs.path)
	return nil
}

// validateChainLengths checks invariant I3: each occupied inode's chain,
// followed from first_block, visits exactly ceil(size/BlockSize) distinct
// blocks.
func (fs *FS) validateChainLengths() error {
	for i := 0; i < layout.MaxFiles; i++ {
		e := fs.inodes.Get(i)
		if e.Empty() {
			continue
		}
		want := layout.BlocksForSize(int(e.Size))
		got := 0
		cur := e.FirstBlock
		seen := make(map[int]bool, layout.MaxBlocks)
		for cur != layout.NoBlock {
			k := int(cur)
			if k < 0 || k >= layout.MaxBlocks || seen[k] {
				return fserr.New(fserr.Corrupt, "corrupt chain for file "+e.Name)
			}
			seen[k] = true
			got++
			cur = fs.nodes.Get(k).Next
		}
		if got != want {
			return fserr.New(fserr.Corrupt, "chain length mismatch for file "+e.Name)
		}
	}
	return nil
}
