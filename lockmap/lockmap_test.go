package lockmap

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFairRWMutexAllowsConcurrentReaders(t *testing.T) {
	m := NewFairRWMutex()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RLock()
			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&maxActive)
				if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			m.RUnlock()
		}()
	}
	wg.Wait()
	assert.Greater(t, maxActive, int32(1), "readers should overlap")
}

func TestFairRWMutexExcludesWriter(t *testing.T) {
	m := NewFairRWMutex()
	var active int32
	var sawOverlap int32
	var wg sync.WaitGroup

	worker := func(writer bool) {
		defer wg.Done()
		if writer {
			m.Lock()
		} else {
			m.RLock()
		}
		if writer {
			if atomic.AddInt32(&active, 1) != 1 {
				atomic.StoreInt32(&sawOverlap, 1)
			}
		} else {
			atomic.AddInt32(&active, 1)
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		if writer {
			m.Unlock()
		} else {
			m.RUnlock()
		}
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go worker(i%3 == 0)
	}
	wg.Wait()
	assert.Zero(t, sawOverlap, "a writer should never observe another holder active")
}

func TestFairRWMutexPreservesArrivalOrderForWriters(t *testing.T) {
	m := NewFairRWMutex()
	m.Lock() // block everyone else initially

	var order []int
	var mu sync.Mutex
	var started sync.WaitGroup
	started.Add(3)

	for i := 1; i <= 3; i++ {
		i := i
		go func() {
			started.Done()
			// stagger arrival order deterministically
			time.Sleep(time.Duration(i) * 5 * time.Millisecond)
			m.Lock()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			m.Unlock()
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond) // let all three enqueue
	m.Unlock()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestManagerEnsureLookupRemove(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	m := New()
	_, ok := m.LookupFileLock("a")
	assert.False(ok)

	m.EnsureFileLock("a")
	lock, ok := m.LookupFileLock("a")
	require.True(ok)
	require.NotNil(lock)

	m.RemoveFileLock("a")
	_, ok = m.LookupFileLock("a")
	assert.False(ok)
}

func TestCurrentFileLockDetectsDeleteAndRecreate(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	m := New()
	m.EnsureFileLock("a")
	original, ok := m.LookupFileLock("a")
	require.True(ok)
	assert.True(m.CurrentFileLock("a", original), "freshly created lock is current")

	m.RemoveFileLock("a")
	assert.False(m.CurrentFileLock("a", original), "removed entry is no longer current")

	m.EnsureFileLock("a")
	replacement, ok := m.LookupFileLock("a")
	require.True(ok)
	assert.NotSame(original, replacement, "EnsureFileLock allocates a fresh object once absent")
	assert.False(m.CurrentFileLock("a", original), "stale pointer must never read back as current")
	assert.True(m.CurrentFileLock("a", replacement))
}

func TestManagerGlobalLock(t *testing.T) {
	m := New()
	m.GLock()
	done := make(chan struct{})
	go func() {
		m.GRLock()
		close(done)
		m.GRUnlock()
	}()
	select {
	case <-done:
		m.GUnlock()
		t.Fatal("reader should not proceed while G is write-locked")
	case <-time.After(20 * time.Millisecond):
	}
	m.GUnlock()
	<-done
}
