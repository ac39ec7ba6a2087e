package chain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnfs/tinyfsd/alloc"
	"github.com/mnfs/tinyfsd/codec"
	"github.com/mnfs/tinyfsd/disk"
	"github.com/mnfs/tinyfsd/layout"
)

func mkNode(blockIndex, next int) codec.ChainNode {
	return codec.ChainNode{BlockIndex: int16(blockIndex), Next: int16(next)}
}

func newTestEngine(t *testing.T) (*Engine, *disk.Device) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vol.img")
	d, err := disk.Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Truncate(layout.VolumeSize))
	t.Cleanup(func() { d.Close() })
	return NewEngine(d), d
}

func TestInstallThenReadRoundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	e, _ := newTestEngine(t)
	nodes := NewTable()
	free := alloc.New()

	content := make([]byte, 129) // spans 2 blocks
	for i := range content {
		content[i] = byte(i)
	}
	blocks, ok := free.Find(layout.BlocksForSize(len(content)))
	require.True(ok)

	head, err := e.Install(nodes, free, blocks, content)
	require.NoError(err)

	out, err := e.Read(nodes, head, len(content))
	require.NoError(err)
	assert.Equal(content, out)
	assert.Equal(layout.MaxBlocks-2, free.CountFree())
}

func TestReadEmptyDoesNotTouchDisk(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	e, _ := newTestEngine(t)
	nodes := NewTable()

	out, err := e.Read(nodes, layout.NoBlock, 0)
	require.NoError(err)
	assert.Equal([]byte{}, out)
}

func TestReleaseFreesBlocksAndZeroes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	e, d := newTestEngine(t)
	nodes := NewTable()
	free := alloc.New()

	content := make([]byte, 200)
	for i := range content {
		content[i] = 0xAB
	}
	blocks, ok := free.Find(layout.BlocksForSize(len(content)))
	require.True(ok)
	head, err := e.Install(nodes, free, blocks, content)
	require.NoError(err)

	require.NoError(e.Release(nodes, free, head))
	assert.Equal(layout.MaxBlocks, free.CountFree())

	buf := make([]byte, layout.BlockSize)
	require.NoError(d.ReadExact(layout.BlockOffset(blocks[0]), buf))
	for _, b := range buf {
		assert.Equal(byte(0), b)
	}
}

func TestReleaseIsIdempotentOnEmptyChain(t *testing.T) {
	require := require.New(t)
	e, _ := newTestEngine(t)
	nodes := NewTable()
	free := alloc.New()
	require.NoError(e.Release(nodes, free, layout.NoBlock))
}

func TestReadRejectsCycle(t *testing.T) {
	require := require.New(t)
	e, _ := newTestEngine(t)
	nodes := NewTable()
	// hand-craft a two-node cycle: 0 -> 1 -> 0
	nodes.Set(0, mkNode(0, 1))
	nodes.Set(1, mkNode(1, 0))

	_, err := e.Read(nodes, 0, layout.BlockSize*2)
	require.Error(err)
}

func TestReadRejectsOutOfRangeIndex(t *testing.T) {
	require := require.New(t)
	e, _ := newTestEngine(t)
	nodes := NewTable()
	nodes.Set(0, mkNode(0, 99))

	_, err := e.Read(nodes, 0, layout.BlockSize*2)
	require.Error(err)
}
