// Package state provides the small stack used for reader scopes and nested
// validation scopes.
package state

// StateStack is a reusable LIFO stack backed by a slice.
type StateStack[T any] struct {
	items []T
}

// NewStateStack creates a stack with an optional capacity hint.
func NewStateStack[T any](capacity int) StateStack[T] {
	if capacity <= 0 {
		return StateStack[T]{}
	}
	return StateStack[T]{items: make([]T, 0, capacity)}
}

// Push adds one value to the stack top.
func (s *StateStack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Pop removes and returns the top value.
func (s *StateStack[T]) Pop() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	value := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return value, true
}

// Peek returns the top value without removing it.
func (s *StateStack[T]) Peek() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Bottom returns the first value pushed without removing it.
func (s *StateStack[T]) Bottom() (T, bool) {
	var zero T
	if s == nil || len(s.items) == 0 {
		return zero, false
	}
	return s.items[0], true
}

// Replace overwrites the top value in place. It reports false on an empty stack.
func (s *StateStack[T]) Replace(value T) bool {
	if s == nil || len(s.items) == 0 {
		return false
	}
	s.items[len(s.items)-1] = value
	return true
}

// Len reports the current stack depth.
func (s *StateStack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Reset clears the stack while retaining capacity.
func (s *StateStack[T]) Reset() {
	if s == nil {
		return
	}
	clear(s.items)
	s.items = s.items[:0]
}
