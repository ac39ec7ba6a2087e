package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnfs/tinyfsd/layout"
)

func TestFindReturnsAscendingIndices(t *testing.T) {
	assert := assert.New(t)
	a := New()
	got, ok := a.Find(3)
	assert.True(ok)
	assert.Equal([]int{0, 1, 2}, got)
}

func TestFindSkipsAllocated(t *testing.T) {
	assert := assert.New(t)
	a := New()
	a.SetFree(0, false)
	a.SetFree(2, false)
	got, ok := a.Find(2)
	assert.True(ok)
	assert.Equal([]int{1, 3}, got)
}

func TestFindFailsWhenNotEnoughFree(t *testing.T) {
	assert := assert.New(t)
	a := New()
	for i := 0; i < layout.MaxBlocks-1; i++ {
		a.SetFree(i, false)
	}
	_, ok := a.Find(2)
	assert.False(ok)
}

func TestFindZeroIsTrivially(t *testing.T) {
	assert := assert.New(t)
	a := New()
	got, ok := a.Find(0)
	assert.True(ok)
	assert.Nil(got)
}

func TestFindDeterministic(t *testing.T) {
	assert := assert.New(t)
	a := New()
	a.SetFree(1, false)
	first, _ := a.Find(4)
	second, _ := a.Find(4)
	assert.Equal(first, second)
}

func TestCountFree(t *testing.T) {
	assert := assert.New(t)
	a := New()
	assert.Equal(layout.MaxBlocks, a.CountFree())
	a.SetFree(0, false)
	assert.Equal(layout.MaxBlocks-1, a.CountFree())
}
