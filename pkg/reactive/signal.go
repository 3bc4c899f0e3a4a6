package reactive

import (
	"sync"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Value is the read-only side of a reactive value
type Value[T any] interface {
	Get() T
	Watch(fn func(T)) (cancel func())
}

// Signal is the interface for writable reactive values
type Signal[T any] interface {
	Value[T]
	Set(T)
}

type watcher[T any] struct {
	id uint32
	fn func(T)
}

// State represents a reactive state value. Watchers run synchronously on
// the goroutine that calls Set, outside the lock, in registration order.
type State[T any] struct {
	value T
	mu    sync.RWMutex

	watchers   []watcher[T]
	watchersMu sync.RWMutex
	nextID     uint32
}

// NewState creates a new reactive state
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

// Get returns the current value
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies watchers
func (s *State[T]) Set(value T) {
	if debugLog != nil {
		debugLog("[State] Set called with value:", value)
	}

	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	s.notify(value)
}

// Update atomically reads, modifies, and writes the value
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	s.value = fn(oldValue)
	newValue := s.value
	s.mu.Unlock()

	if debugLog != nil {
		debugLog("[State] Update called, old:", oldValue, "new:", newValue)
	}

	s.notify(newValue)
}

// Watch registers fn to be called after every Set or Update
func (s *State[T]) Watch(fn func(T)) (cancel func()) {
	s.watchersMu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers = append(s.watchers, watcher[T]{id: id, fn: fn})
	s.watchersMu.Unlock()

	return func() {
		s.watchersMu.Lock()
		defer s.watchersMu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

func (s *State[T]) notify(value T) {
	// Copy so watchers may cancel themselves or register new watchers
	s.watchersMu.RLock()
	ws := make([]watcher[T], len(s.watchers))
	copy(ws, s.watchers)
	s.watchersMu.RUnlock()

	if debugLog != nil && len(ws) > 0 {
		debugLog("[State] Notifying", len(ws), "watchers")
	}

	for _, w := range ws {
		w.fn(value)
	}
}

// Computed is a memoized value derived from a source. It is recomputed
// lazily after the source changes.
type Computed[S, T any] struct {
	source  Value[S]
	compute func(S) T
	value   T
	valid   bool
	mu      sync.Mutex
}

// NewComputed derives a value from source
func NewComputed[S, T any](source Value[S], compute func(S) T) *Computed[S, T] {
	c := &Computed[S, T]{source: source, compute: compute}
	source.Watch(func(S) { c.Invalidate() })
	return c
}

// Get returns the computed value, recalculating if necessary
func (c *Computed[S, T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		c.value = c.compute(c.source.Get())
		c.valid = true
	}
	return c.value
}

// Invalidate marks the computed value as needing recalculation
func (c *Computed[S, T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Watch calls fn with the derived value after every source change
func (c *Computed[S, T]) Watch(fn func(T)) (cancel func()) {
	return c.source.Watch(func(S) { fn(c.Get()) })
}
