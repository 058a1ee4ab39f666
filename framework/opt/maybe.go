// Package opt provides a minimal optional-value type.
package opt

import "fmt"

// Maybe holds a value of type V, or nothing.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value if one is defined, or the zero value otherwise.
func (m Maybe[V]) Value() V { return m.value }

// OrElse returns the value if one is defined, or valueIfUndefined otherwise.
func (m Maybe[V]) OrElse(valueIfUndefined V) V {
	if m.defined {
		return m.value
	}
	return valueIfUndefined
}

// String returns the value's string representation, or "[none]".
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	var v interface{} = m.value
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}
