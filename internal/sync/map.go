package sync

import "sync"

// Map is a generic thread-safe map wrapper using RWMutex
type Map[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewMap creates a new generic sync Map
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value stored in the map for a key.
// The ok result indicates whether value was found in the map.
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok = m.m[key]
	return
}

// Store sets the value for a key.
func (m *Map[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
}

// Delete deletes the value for a key.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

// LoadOrStore returns the existing value for the key if present.
// Otherwise, it stores and returns the given value.
// The loaded result is true if the value was loaded, false if stored.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actual, loaded = m.m[key]
	if !loaded {
		m.m[key] = value
		actual = value
	}
	return
}

// Range calls f sequentially for each key and value present in the map.
// If f returns false, range stops the iteration.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.m {
		if !f(k, v) {
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// View provides read and write operations on the map without acquiring locks.
// It should only be used within the callback of WithLock.
type View[K comparable, V any] interface {
	// Get returns the value for a key.
	Get(key K) (value V, ok bool)

	// Set sets the value for a key.
	Set(key K, value V)

	// Delete deletes the value for a key.
	Delete(key K)

	// Range calls f for each key and value.
	// If f returns false, range stops the iteration.
	Range(f func(key K, value V) bool)

	// Len returns the number of items in the map.
	Len() int
}

type mapView[K comparable, V any] struct {
	m map[K]V
}

func (mv *mapView[K, V]) Get(key K) (value V, ok bool) {
	value, ok = mv.m[key]
	return
}

func (mv *mapView[K, V]) Set(key K, value V) {
	mv.m[key] = value
}

func (mv *mapView[K, V]) Delete(key K) {
	delete(mv.m, key)
}

func (mv *mapView[K, V]) Range(f func(key K, value V) bool) {
	for k, v := range mv.m {
		if !f(k, v) {
			break
		}
	}
}

func (mv *mapView[K, V]) Len() int {
	return len(mv.m)
}

// WithLock executes the given function while holding a write lock.
// The function receives a View that provides operations on the locked map.
// This is the way to perform multiple operations atomically; the lock is
// released even if the function panics.
func (m *Map[K, V]) WithLock(f func(view View[K, V])) {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := &mapView[K, V]{m: m.m}
	f(view)
}
