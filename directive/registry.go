package directive

import (
	"errors"
	"reflect"
	"sync"
)

// ErrNilMessageType indicates that Register received a nil value.
var ErrNilMessageType = errors.New("messenger/directive: message type is nil")

// Discovery returns the ordered directives declared for a message.
type Discovery interface {
	Directives(msg any) []Directive
}

// Registry stores directives per message type.
type Registry struct {
	mu         sync.RWMutex
	directives map[reflect.Type][]Directive
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		directives: make(map[reflect.Type][]Directive),
	}
}

// Register appends directives to the declarations of msg's type.
// Repeated directives of the same kind are kept, not deduplicated.
func (r *Registry) Register(msg any, directives ...Directive) error {
	t := normalizeType(reflect.TypeOf(msg))
	if t == nil {
		return ErrNilMessageType
	}

	r.add(t, directives)
	return nil
}

// Register declares directives for message type T.
func Register[T any](r *Registry, directives ...Directive) {
	r.add(normalizeType(reflect.TypeFor[T]()), directives)
}

func (r *Registry) add(t reflect.Type, directives []Directive) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.directives == nil {
		r.directives = make(map[reflect.Type][]Directive)
	}

	for _, d := range directives {
		if d != nil {
			r.directives[t] = append(r.directives[t], d)
		}
	}
}

// Directives returns directives declared by msg itself followed by the
// registered ones. It is a pure read.
func (r *Registry) Directives(msg any) []Directive {
	var out []Directive

	if d, ok := msg.(Declarer); ok {
		for _, item := range d.Directives() {
			if item != nil {
				out = append(out, item)
			}
		}
	}

	if r == nil {
		return out
	}

	t := normalizeType(reflect.TypeOf(msg))
	if t == nil {
		return out
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append(out, r.directives[t]...)
}

// Set returns the directives of msg grouped by kind.
func (r *Registry) Set(msg any) Set {
	return NewSet(r.Directives(msg)...)
}

func normalizeType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if t.Kind() != reflect.Pointer {
		t = reflect.PointerTo(t)
	}
	return t
}
