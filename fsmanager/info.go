package fsmanager

import "github.com/mnfs/tinyfsd/layout"

// Info is the SPEC_FULL INFO addition: a point-in-time summary of
// filesystem occupancy, useful for monitoring without walking every file.
type Info struct {
	Name        string
	FilesUsed   int
	MaxFiles    int
	BlocksUsed  int
	MaxBlocks   int
	BlockSize   int
	BackingPath string
}

// Info implements the SPEC_FULL INFO addition, taken under G.read for the
// same snapshot consistency as List.
func (fs *FS) Info() Info {
	fs.locks.GRLock()
	defer fs.locks.GRUnlock()

	return Info{
		Name:        fs.Name,
		FilesUsed:   fs.inodes.Count(),
		MaxFiles:    layout.MaxFiles,
		BlocksUsed:  layout.MaxBlocks - fs.free.CountFree(),
		MaxBlocks:   layout.MaxBlocks,
		BlockSize:   layout.BlockSize,
		BackingPath: fs.path,
	}
}
