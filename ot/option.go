package ot

import "fmt"

// Option is an optional value. It is returned by queries for which absence
// is a regular outcome rather than an error, e.g. variation sequence lookups
// or the required feature of a language system.
type Option[T any] struct {
	value T
	ok    bool
}

// Some constructs an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None constructs an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether o holds a value.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IsNone reports whether o is empty.
func (o Option[T]) IsNone() bool {
	return !o.ok
}

// Unwrap returns the value in the usual Go "(value, ok)" form.
func (o Option[T]) Unwrap() (T, bool) {
	return o.value, o.ok
}

// MustUnwrap returns the value and panics if o is empty.
func (o Option[T]) MustUnwrap() T {
	if !o.ok {
		panic("ot: unwrap of empty option")
	}
	return o.value
}

// Or returns the value of o, or def if o is empty.
func (o Option[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Option[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}
