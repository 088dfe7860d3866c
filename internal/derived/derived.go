// Package derived provides state containers scoped to an identity key.
//
// A [State] behaves like ordinary mutable state until the key it is synced
// against changes, at which point the value resets to a freshly supplied
// initial value. The player uses it so user edits (loop ranges, BPM, track
// selection) survive refreshes but reset when the displayed song changes.
package derived

// State holds a value tied to an identity key.
//
// Keys are compared by value and must be comparable (strings, numbers, nil);
// changing the key discards any edits made under the previous key.
type State[T any] struct {
	key   any
	value T
}

// New creates a State holding initial under the given key.
func New[T any](initial T, key any) *State[T] {
	return &State[T]{key: key, value: initial}
}

// NewLazy creates a State whose initial value comes from factory, invoked
// exactly once. Use for expensive initial values.
func NewLazy[T any](factory func() T, key any) *State[T] {
	return &State[T]{key: key, value: factory()}
}

// Value returns the current value.
func (s *State[T]) Value() T { return s.value }

// Set assigns the value without touching the key.
func (s *State[T]) Set(v T) { s.value = v }

// Update assigns the value computed from the current one.
func (s *State[T]) Update(fn func(T) T) { s.value = fn(s.value) }

// Sync resets the value to initial when key differs from the stored key and
// reports whether a reset happened. When the key is unchanged the supplied
// initial is ignored, so edits made under the current key persist.
func (s *State[T]) Sync(key any, initial T) bool {
	if key == s.key {
		return false
	}
	s.key = key
	s.value = initial
	return true
}

// SyncLazy is [State.Sync] with a factory, invoked only when the key changed.
func (s *State[T]) SyncLazy(key any, factory func() T) bool {
	if key == s.key {
		return false
	}
	s.key = key
	s.value = factory()
	return true
}

// Key returns the identity key the value is currently scoped to.
func (s *State[T]) Key() any { return s.key }

// Tracker reports the previously observed value of a changing input.
type Tracker[T any] struct {
	prev T
	seen bool
}

// Observe records v and returns the value observed by the prior call.
// ok is false on the very first observation, when no prior value exists.
func (t *Tracker[T]) Observe(v T) (prev T, ok bool) {
	prev, ok = t.prev, t.seen
	t.prev = v
	t.seen = true
	return prev, ok
}
