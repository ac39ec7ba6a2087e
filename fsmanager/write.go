package fsmanager

import (
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/layout"
	"github.com/mnfs/tinyfsd/util"
)

// Write implements spec.md 4.7 WRITE: a whole-file content replacement,
// never an append. It follows the fixed outer/inner lock order (F[name]
// outer, G inner) and includes the mandatory re-check under G.write
// (spec.md 5's "Known race") to defend against a DELETE that raced between
// the initial existence check and the chain swap.
func (fs *FS) Write(name string, content []byte) error {
	if len(content) > layout.MaxWriteBytes {
		return fserr.New(fserr.NoSpace, "file too large or insufficient space")
	}

	lock, ok := fs.locks.LookupFileLock(name)
	if !ok {
		// Lazy creation: normal clients CREATE before WRITE, so this is the
		// uncommon path (spec.md 4.7 step 1).
		fs.locks.GLock()
		fs.locks.EnsureFileLock(name)
		fs.locks.GUnlock()
		lock, _ = fs.locks.LookupFileLock(name)
	}
	lock.Lock()
	defer lock.Unlock()

	fs.locks.GRLock()
	_, exists := fs.inodes.FindByName(name)
	fs.locks.GRUnlock()
	if !exists {
		return fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}

	needed := layout.BlocksForSize(len(content))
	blocks, ok := fs.free.Find(needed)
	if !ok {
		return fserr.New(fserr.NoSpace, "file too large or insufficient space")
	}

	fs.locks.GLock()
	defer fs.locks.GUnlock()

	if !fs.locks.CurrentFileLock(name, lock) {
		// A DELETE removed F[name] (and possibly a subsequent CREATE
		// installed a fresh one) while we were blocked holding the now
		// orphaned lock object: we are no longer serialized against
		// whatever resolves the live entry. Same known race as the
		// existence re-check below, just the delete-then-recreate variant
		// of it — fail rather than commit under a stale lock.
		return fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}

	slot, exists := fs.inodes.FindByName(name)
	if !exists {
		// The known race: a DELETE ran between the existence check above
		// and here. Fail rather than resurrect the file.
		return fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}
	old := fs.inodes.Get(slot)

	if err := fs.chain.Release(fs.nodes, fs.free, old.FirstBlock); err != nil {
		return err
	}

	// find_free was computed before re-acquiring G.write; re-derive it now
	// that Release has run and the free list is authoritative again, since
	// old's own blocks may now be part of the candidate set.
	blocks, ok = fs.free.Find(needed)
	if !ok {
		return fserr.New(fserr.NoSpace, "file too large or insufficient space")
	}

	first, err := fs.chain.Install(fs.nodes, fs.free, blocks, content)
	if err != nil {
		return err
	}

	updated := codec.Inode{Name: name, Size: int16(len(content)), FirstBlock: first}
	fs.inodes.Set(slot, updated)
	if err := fs.dev.WriteAt(layout.InodeOffset(slot), codec.EncodeInode(updated)); err != nil {
		return fserr.Wrap(fserr.IO, "writing updated inode", err)
	}
	if err := fs.dev.Sync(); err != nil {
		return fserr.Wrap(fserr.IO, "syncing after write", err)
	}

	util.DPrintf(3, "fsmanager: WRITE %q -> %d bytes, %d blocks\n", name, len(content), len(blocks))
	return nil
}
