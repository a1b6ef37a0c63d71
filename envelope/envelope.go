/*
Package envelope pairs a message with the markers accumulated for one dispatch
attempt, and builds that envelope from the directives declared on the message
type.

An Envelope is never mutated: With and Without return a new value, so an
envelope handed to the execution mechanism can be compared with the one it
returns.
*/
package envelope

import (
	"reflect"
)

// Marker is an execution-level signal attached to an Envelope. Markers are
// grouped by their concrete type.
type Marker any

// Envelope owns a message and its markers grouped by kind in arrival order.
type Envelope struct {
	message any
	kinds   []reflect.Type
	markers map[reflect.Type][]Marker
}

// Wrap returns an envelope for msg carrying markers. When msg already is an
// *Envelope the markers are added to a copy of it.
func Wrap(msg any, markers ...Marker) *Envelope {
	if env, ok := msg.(*Envelope); ok && env != nil {
		return env.With(markers...)
	}

	env := &Envelope{message: msg}
	env.add(markers)
	return env
}

// Message returns the wrapped message.
func (e *Envelope) Message() any {
	if e == nil {
		return nil
	}
	return e.message
}

// With returns a copy of e with markers appended to their kind groups.
func (e *Envelope) With(markers ...Marker) *Envelope {
	out := e.clone()
	out.add(markers)
	return out
}

// WithoutKind returns a copy of e without any marker of kind.
func (e *Envelope) WithoutKind(kind reflect.Type) *Envelope {
	out := e.clone()
	if _, ok := out.markers[kind]; !ok {
		return out
	}

	delete(out.markers, kind)
	kinds := out.kinds[:0]
	for _, k := range out.kinds {
		if k != kind {
			kinds = append(kinds, k)
		}
	}
	out.kinds = kinds
	return out
}

// Kinds returns the marker kinds in order of first arrival.
func (e *Envelope) Kinds() []reflect.Type {
	if e == nil {
		return nil
	}
	return append([]reflect.Type(nil), e.kinds...)
}

// Of returns the markers of kind in arrival order.
func (e *Envelope) Of(kind reflect.Type) []Marker {
	if e == nil {
		return nil
	}
	return append([]Marker(nil), e.markers[kind]...)
}

// All returns every marker, grouped by kind.
func (e *Envelope) All() []Marker {
	if e == nil {
		return nil
	}

	var out []Marker
	for _, kind := range e.kinds {
		out = append(out, e.markers[kind]...)
	}
	return out
}

// Len returns the total number of markers.
func (e *Envelope) Len() int {
	if e == nil {
		return 0
	}

	n := 0
	for _, list := range e.markers {
		n += len(list)
	}
	return n
}

func (e *Envelope) clone() *Envelope {
	out := &Envelope{}
	if e == nil {
		return out
	}

	out.message = e.message
	out.kinds = append([]reflect.Type(nil), e.kinds...)
	if len(e.markers) > 0 {
		out.markers = make(map[reflect.Type][]Marker, len(e.markers))
		for kind, list := range e.markers {
			out.markers[kind] = append([]Marker(nil), list...)
		}
	}
	return out
}

func (e *Envelope) add(markers []Marker) {
	for _, m := range markers {
		if m == nil {
			continue
		}
		if e.markers == nil {
			e.markers = make(map[reflect.Type][]Marker)
		}

		kind := reflect.TypeOf(m)
		if _, seen := e.markers[kind]; !seen {
			e.kinds = append(e.kinds, kind)
		}
		e.markers[kind] = append(e.markers[kind], m)
	}
}

// MarkersOf returns the markers of type T in arrival order.
func MarkersOf[T Marker](e *Envelope) []T {
	if e == nil {
		return nil
	}

	list := e.markers[reflect.TypeFor[T]()]
	out := make([]T, 0, len(list))
	for _, m := range list {
		out = append(out, m.(T))
	}
	return out
}

// Last returns the most recent marker of type T.
func Last[T Marker](e *Envelope) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}

	list := e.markers[reflect.TypeFor[T]()]
	if len(list) == 0 {
		return zero, false
	}
	return list[len(list)-1].(T), true
}

// Count returns how many markers of type T are attached.
func Count[T Marker](e *Envelope) int {
	if e == nil {
		return 0
	}
	return len(e.markers[reflect.TypeFor[T]()])
}

// Has reports whether at least one marker of type T is attached.
func Has[T Marker](e *Envelope) bool {
	return Count[T](e) > 0
}

// Without returns a copy of e without markers of type T.
func Without[T Marker](e *Envelope) *Envelope {
	return e.WithoutKind(reflect.TypeFor[T]())
}
