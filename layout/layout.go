// Package layout defines the fixed on-disk geometry of the simulated disk:
// the size and position of every inode slot, chain-node slot and data
// block. Nothing in this package touches a file descriptor; it is pure
// arithmetic so that the codec, disk and fsmanager packages agree on where
// everything lives without duplicating the formulas.
package layout

import "github.com/mnfs/tinyfsd/util"

const (
	// MaxFiles is the number of inode slots the volume has room for.
	MaxFiles = 5
	// MaxBlocks is the number of data blocks the volume has room for.
	MaxBlocks = 10
	// BlockSize is the size, in bytes, of one data block.
	BlockSize = 128
	// NameMax is the longest file name, in bytes, an inode slot can hold.
	NameMax = 11

	// InodeSize is the on-disk size of one inode entry: name (NameMax) +
	// size (2) + first_block (2).
	InodeSize = NameMax + 2 + 2
	// ChainNodeSize is the on-disk size of one chain-node entry: block_index
	// (2) + next (2).
	ChainNodeSize = 2 + 2

	// NoBlock is the sentinel stored in place of a block index meaning
	// "none" (an inode with no chain, or a chain-node tail/free marker).
	NoBlock int16 = -1

	// MaxFileBytes is the largest content a single file may hold, bounded
	// by the whole data region.
	MaxFileBytes = MaxBlocks * BlockSize
	// MaxWriteBytes is the largest WRITE payload allowed by the 16-bit
	// signed on-disk size field (spec.md 4.7 step 6).
	MaxWriteBytes = 32767
)

// MetadataSize is the total size, in bytes, of the inode table plus the
// chain-node table.
const MetadataSize = MaxFiles*InodeSize + MaxBlocks*ChainNodeSize

// DataStart is the byte offset of the first data block: the metadata
// region rounded up to a whole block.
const DataStart = ((MetadataSize + BlockSize - 1) / BlockSize) * BlockSize

// VolumeSize is the total length, in bytes, of the backing file.
const VolumeSize = DataStart + MaxBlocks*BlockSize

// InodeOffset returns the byte offset of inode slot i.
func InodeOffset(i int) int64 {
	return int64(i * InodeSize)
}

// ChainNodeOffset returns the byte offset of chain-node slot k.
func ChainNodeOffset(k int) int64 {
	return int64(MaxFiles*InodeSize + k*ChainNodeSize)
}

// BlockOffset returns the byte offset of the start of data block k.
func BlockOffset(k int) int64 {
	return int64(DataStart + k*BlockSize)
}

// BlocksForSize returns ceil(size / BlockSize), the chain length a file of
// the given size must occupy.
func BlocksForSize(size int) int {
	if size <= 0 {
		return 0
	}
	return int(util.RoundUp(uint64(size), BlockSize))
}
