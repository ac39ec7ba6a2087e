package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnfs/tinyfsd/layout"
)

func TestInodeRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	in := Inode{Name: "hello", Size: 42, FirstBlock: 3}
	raw := EncodeInode(in)
	require.Len(raw, layout.InodeSize)

	out, err := DecodeInode(raw)
	require.NoError(err)
	assert.Equal(in, out)
}

func TestInodeNameTruncatedAndPadded(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw := EncodeInode(Inode{Name: "abcdefghijklmno", Size: 0, FirstBlock: -1})
	require.Len(raw, layout.InodeSize)
	// name field is exactly NameMax bytes, truncated from the right
	assert.Equal([]byte("abcdefghijk"), raw[:layout.NameMax])

	out, err := DecodeInode(raw)
	require.NoError(err)
	assert.Equal("abcdefghijk", out.Name)
}

func TestInodeNamePaddedWithNulAndTrimmed(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw := EncodeInode(Inode{Name: "ab", Size: 0, FirstBlock: -1})
	// bytes after the name are NUL, not spaces
	assert.Equal(byte(0), raw[2])

	out, err := DecodeInode(raw)
	require.NoError(err)
	assert.Equal("ab", out.Name)
}

func TestEmptySlotDecodesToEmptyInode(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw := make([]byte, layout.InodeSize)
	out, err := DecodeInode(raw)
	require.NoError(err)
	assert.True(out.Empty())
}

func TestDecodeInodeRejectsMalformedUTF8(t *testing.T) {
	require := require.New(t)

	raw := make([]byte, layout.InodeSize)
	raw[0] = 0xff // invalid UTF-8 lead byte, no NUL terminator before it
	raw[1] = 0xfe
	// size field nonzero so the slot isn't all-zero
	raw[layout.NameMax+1] = 1

	_, err := DecodeInode(raw)
	require.Error(err)
}

func TestDecodeInodeRejectsWrongLength(t *testing.T) {
	require := require.New(t)
	_, err := DecodeInode(make([]byte, layout.InodeSize-1))
	require.Error(err)
}

func TestChainNodeRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	n := ChainNode{BlockIndex: 4, Next: -1}
	raw := EncodeChainNode(n)
	require.Len(raw, layout.ChainNodeSize)

	out, err := DecodeChainNode(raw)
	require.NoError(err)
	assert.Equal(n, out)
	assert.False(out.Free())
}

func TestChainNodeFree(t *testing.T) {
	assert := assert.New(t)
	n := ChainNode{BlockIndex: -1, Next: -1}
	assert.True(n.Free())
}

func TestChainNodeBigEndianOnDisk(t *testing.T) {
	assert := assert.New(t)
	raw := EncodeChainNode(ChainNode{BlockIndex: 1, Next: 2})
	// big-endian 16-bit: high byte first
	assert.Equal([]byte{0x00, 0x01, 0x00, 0x02}, raw)
}
