package fsmanager

import "github.com/mnfs/tinyfsd/util"

// List implements spec.md 4.7 LIST: a snapshot of occupied file names in
// inode-slot order, taken under G.read so it cannot observe a torn CREATE
// or DELETE.
func (fs *FS) List() []string {
	fs.locks.GRLock()
	defer fs.locks.GRUnlock()

	names := fs.inodes.Names()
	util.DPrintf(5, "fsmanager: LIST -> %d files\n", len(names))
	return names
}
