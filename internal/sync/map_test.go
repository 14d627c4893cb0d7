package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_StoreAndLoad(t *testing.T) {
	m := NewMap[string, int]()

	m.Store("key1", 42)

	value, ok := m.Load("key1")
	assert.True(t, ok)
	assert.Equal(t, 42, value)
}

func TestMap_LoadNonExistent(t *testing.T) {
	m := NewMap[string, int]()

	value, ok := m.Load("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, 0, value)
}

func TestMap_Delete(t *testing.T) {
	m := NewMap[string, int]()

	m.Store("key1", 42)
	m.Delete("key1")

	_, ok := m.Load("key1")
	assert.False(t, ok)
}

func TestMap_LoadOrStore(t *testing.T) {
	m := NewMap[string, int]()

	actual, loaded := m.LoadOrStore("key1", 42)
	assert.False(t, loaded)
	assert.Equal(t, 42, actual)

	actual, loaded = m.LoadOrStore("key1", 100)
	assert.True(t, loaded)
	assert.Equal(t, 42, actual)
}

func TestMap_Range(t *testing.T) {
	m := NewMap[string, int]()

	m.Store("key1", 1)
	m.Store("key2", 2)
	m.Store("key3", 3)

	count := 0
	sum := 0
	m.Range(func(_ string, value int) bool {
		count++
		sum += value
		return true
	})

	assert.Equal(t, 3, count)
	assert.Equal(t, 6, sum)
}

func TestMap_Len(t *testing.T) {
	m := NewMap[string, int]()
	assert.Equal(t, 0, m.Len())

	m.Store("key1", 1)
	m.Store("key2", 2)
	assert.Equal(t, 2, m.Len())
}

func TestMap_WithLock(t *testing.T) {
	m := NewMap[string, int]()

	m.WithLock(func(view View[string, int]) {
		view.Set("key1", 1)
		view.Set("key2", 2)
		v, ok := view.Get("key1")
		assert.True(t, ok)
		view.Set("key3", v+10)
		view.Delete("key2")
		assert.Equal(t, 2, view.Len())
	})

	v, ok := m.Load("key3")
	assert.True(t, ok)
	assert.Equal(t, 11, v)
	_, ok = m.Load("key2")
	assert.False(t, ok)
}

func TestMap_ConcurrentAccess(t *testing.T) {
	m := NewMap[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Store(i, i)
			m.Load(i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, m.Len())
}
