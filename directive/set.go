package directive

import "reflect"

// Set groups directives by concrete type. Declaration order is kept both
// across the whole set and inside every group.
type Set struct {
	all    []Directive
	kinds  []reflect.Type
	byKind map[reflect.Type][]Directive
}

// NewSet builds a Set from directives in declaration order. Nil entries are skipped.
func NewSet(directives ...Directive) Set {
	s := Set{byKind: make(map[reflect.Type][]Directive)}
	for _, d := range directives {
		if d == nil {
			continue
		}
		kind := KindOf(d)
		if _, seen := s.byKind[kind]; !seen {
			s.kinds = append(s.kinds, kind)
		}
		s.byKind[kind] = append(s.byKind[kind], d)
		s.all = append(s.all, d)
	}
	return s
}

// All returns every directive in declaration order.
func (s Set) All() []Directive {
	return append([]Directive(nil), s.all...)
}

// Len returns the number of directives.
func (s Set) Len() int {
	return len(s.all)
}

// Kinds returns the distinct directive types in order of first declaration.
func (s Set) Kinds() []reflect.Type {
	return append([]reflect.Type(nil), s.kinds...)
}

// Of returns the directives of the given kind.
func (s Set) Of(kind reflect.Type) []Directive {
	return append([]Directive(nil), s.byKind[kind]...)
}

// OfType returns the directives of type T.
func OfType[T Directive](s Set) []T {
	list := s.byKind[reflect.TypeFor[T]()]
	out := make([]T, 0, len(list))
	for _, d := range list {
		out = append(out, d.(T))
	}
	return out
}
