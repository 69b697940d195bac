package archive

import "sync"

// lazy memoizes the first evaluation of init, error included.
type lazy[T any] struct {
	once  sync.Once
	init  func() (T, error)
	value T
	err   error
	done  bool
}

func newLazy[T any](init func() (T, error)) *lazy[T] {
	return &lazy[T]{init: init}
}

func resolved[T any](value T) *lazy[T] {
	l := &lazy[T]{value: value, done: true}
	l.once.Do(func() {})
	return l
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.init()
		l.done = true
	})
	return l.value, l.err
}

// peek returns the value only if it was already evaluated successfully.
func (l *lazy[T]) peek() (T, bool) {
	if !l.done || l.err != nil {
		var zero T
		return zero, false
	}
	return l.value, true
}
