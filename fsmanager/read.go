package fsmanager

import (
	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/layout"
	"github.com/mnfs/tinyfsd/util"
)

// Read implements spec.md 4.7 READ. It never touches G: concurrent
// CREATE/DELETE of other files is permitted while a READ is in flight
// (spec.md 5).
func (fs *FS) Read(name string) ([]byte, error) {
	lock, ok := fs.locks.LookupFileLock(name)
	if !ok {
		return nil, fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}
	lock.RLock()
	defer lock.RUnlock()

	slot, exists := fs.inodes.FindByName(name)
	if !exists {
		return nil, fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}
	e := fs.inodes.Get(slot)

	data, err := fs.chain.Read(fs.nodes, e.FirstBlock, int(e.Size))
	if err != nil {
		return nil, err
	}
	util.DPrintf(5, "fsmanager: READ %q -> %d bytes\n", name, len(data))
	return data, nil
}

// Stat implements the SPEC_FULL STAT addition: report a file's size and
// block count without reading its content. Same locking class as Read.
type Stat struct {
	Name   string
	Size   int
	Blocks int
}

func (fs *FS) Stat(name string) (Stat, error) {
	lock, ok := fs.locks.LookupFileLock(name)
	if !ok {
		return Stat{}, fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}
	lock.RLock()
	defer lock.RUnlock()

	slot, exists := fs.inodes.FindByName(name)
	if !exists {
		return Stat{}, fserr.New(fserr.NoSuchFile, "file "+name+" does not exist")
	}
	e := fs.inodes.Get(slot)
	blocks := 0
	cur := e.FirstBlock
	for cur != layout.NoBlock {
		blocks++
		cur = fs.nodes.Get(int(cur)).Next
	}
	return Stat{Name: e.Name, Size: int(e.Size), Blocks: blocks}, nil
}
