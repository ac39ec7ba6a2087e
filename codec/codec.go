// Package codec encodes and decodes the two fixed-size on-disk records —
// inode entries and chain nodes — to and from their byte-exact wire form
// (spec.md 3, 4.1). All multi-byte integers are big-endian 16-bit signed.
//
// The teacher's own sub-block codec (buf.Buf, backed by tchajed/marshal's
// Enc/Dec cursor) only knows how to lay down 8/4/1-byte little-endian
// integers, which cannot produce the 16-bit big-endian fields this format
// requires. What survives from that codec is its shape: a small encoder
// that appends fields into a fixed buffer and a matching decoder that reads
// them back off a cursor, now built directly on encoding/binary.
package codec

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/layout"
)

// Inode is the decoded, in-memory form of one inode slot.
type Inode struct {
	Name       string
	Size       int16
	FirstBlock int16
}

// Empty reports whether the inode represents an unused slot.
func (e Inode) Empty() bool {
	return e == Inode{}
}

// ChainNode is the decoded, in-memory form of one chain-node slot.
type ChainNode struct {
	BlockIndex int16
	Next       int16
}

// Free reports whether the chain-node slot is unallocated.
func (n ChainNode) Free() bool {
	return n.BlockIndex < 0
}

// enc is a small fixed-buffer cursor, in the spirit of the teacher's
// marshal.Enc, specialized to this format's big-endian 16-bit fields.
type enc struct {
	buf []byte
	off int
}

func newEnc(size int) *enc {
	return &enc{buf: make([]byte, size)}
}

func (e *enc) putBytes(b []byte) {
	copy(e.buf[e.off:], b)
	e.off += len(b)
}

func (e *enc) putInt16(v int16) {
	binary.BigEndian.PutUint16(e.buf[e.off:e.off+2], uint16(v))
	e.off += 2
}

func (e *enc) finish() []byte { return e.buf }

// dec is the matching decoder cursor.
type dec struct {
	buf []byte
	off int
}

func newDec(b []byte) *dec { return &dec{buf: b} }

func (d *dec) getBytes(n int) []byte {
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *dec) getInt16() int16 {
	v := int16(binary.BigEndian.Uint16(d.buf[d.off : d.off+2]))
	d.off += 2
	return v
}

// EncodeInode renders e into a layout.InodeSize-byte on-disk slot. The name
// field always writes exactly layout.NameMax bytes: truncated or
// zero-padded from the right.
func EncodeInode(e Inode) []byte {
	enc := newEnc(layout.InodeSize)
	name := make([]byte, layout.NameMax)
	copy(name, []byte(e.Name)) // truncates if e.Name is longer than NameMax
	enc.putBytes(name)
	enc.putInt16(e.Size)
	enc.putInt16(e.FirstBlock)
	return enc.finish()
}

// DecodeInode parses a layout.InodeSize-byte on-disk slot. A fully-zero
// slot decodes to the zero Inode ("empty"). Malformed UTF-8 in the name is
// reported as CorruptFileSystem.
func DecodeInode(b []byte) (Inode, error) {
	if len(b) != layout.InodeSize {
		return Inode{}, fserr.New(fserr.Corrupt, "inode slot has wrong length")
	}
	if isAllZero(b) {
		return Inode{}, nil
	}
	dec := newDec(b)
	rawName := dec.getBytes(layout.NameMax)
	size := dec.getInt16()
	firstBlock := dec.getInt16()

	name, err := decodeName(rawName)
	if err != nil {
		return Inode{}, err
	}
	return Inode{Name: name, Size: size, FirstBlock: firstBlock}, nil
}

// decodeName interprets bytes up to (not including) the first NUL as UTF-8,
// trimming surrounding ASCII whitespace.
func decodeName(raw []byte) (string, error) {
	end := len(raw)
	for i, b := range raw {
		if b == 0x00 {
			end = i
			break
		}
	}
	name := raw[:end]
	if !utf8.Valid(name) {
		return "", fserr.New(fserr.Corrupt, "inode name is not valid UTF-8")
	}
	return strings.TrimSpace(string(name)), nil
}

// EncodeChainNode renders n into a layout.ChainNodeSize-byte on-disk slot.
func EncodeChainNode(n ChainNode) []byte {
	enc := newEnc(layout.ChainNodeSize)
	enc.putInt16(n.BlockIndex)
	enc.putInt16(n.Next)
	return enc.finish()
}

// DecodeChainNode parses a layout.ChainNodeSize-byte on-disk slot.
func DecodeChainNode(b []byte) (ChainNode, error) {
	if len(b) != layout.ChainNodeSize {
		return ChainNode{}, fserr.New(fserr.Corrupt, "chain node slot has wrong length")
	}
	dec := newDec(b)
	return ChainNode{BlockIndex: dec.getInt16(), Next: dec.getInt16()}, nil
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
