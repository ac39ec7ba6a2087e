package fsmanager

import (
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/layout"
	"github.com/mnfs/tinyfsd/util"
)

// Create implements spec.md 4.7 CREATE. Re-creating an existing name is a
// silent success (Open Question decision, spec.md 9): no state changes and
// no error.
func (fs *FS) Create(name string) error {
	fs.locks.GLock()
	defer fs.locks.GUnlock()

	if len(name) > layout.NameMax {
		return fserr.New(fserr.NameTooLong, "filename too long")
	}

	if _, ok := fs.inodes.FindByName(name); ok {
		util.DPrintf(5, "fsmanager: CREATE %q already exists, silent success\n", name)
		return nil
	}

	slot, ok := fs.inodes.FindFreeSlot()
	if !ok {
		return fserr.New(fserr.NoFreeInode, "Maximum file limit reached")
	}

	e := codec.Inode{Name: name, Size: 0, FirstBlock: layout.NoBlock}
	fs.inodes.Set(slot, e)
	if err := fs.dev.WriteAt(layout.InodeOffset(slot), codec.EncodeInode(e)); err != nil {
		return fserr.Wrap(fserr.IO, "writing new inode", err)
	}
	fs.locks.EnsureFileLock(name)
	if err := fs.dev.Sync(); err != nil {
		return fserr.Wrap(fserr.IO, "syncing after create", err)
	}

	util.DPrintf(3, "fsmanager: CREATE %q -> slot %d\n", name, slot)
	return nil
}
