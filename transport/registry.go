package transport

import (
	"errors"
	"reflect"
	"sync"

	"github.com/shortlink-org/messenger/message"
)

// ErrNilMessageType indicates that Register received a nil value.
var ErrNilMessageType = errors.New("messenger/transport: message type is nil")

// TypeRegistry maps canonical names to the Go types received messages decode into.
type TypeRegistry struct {
	mu    sync.RWMutex
	namer message.Namer
	types map[string]reflect.Type
}

// NewTypeRegistry creates an empty registry. A nil namer uses SERVICE_NAME.
func NewTypeRegistry(namer message.Namer) *TypeRegistry {
	if namer == nil {
		namer = message.NewShortlinkNamer("")
	}

	return &TypeRegistry{
		namer: namer,
		types: make(map[string]reflect.Type),
	}
}

// Register records the type of v under its canonical name.
func (r *TypeRegistry) Register(v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return ErrNilMessageType
	}
	if t.Kind() != reflect.Pointer {
		t = reflect.PointerTo(t)
	}

	name := r.namer.Name(v)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[name] = t

	return nil
}

// Resolve returns a pointer type for name.
func (r *TypeRegistry) Resolve(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	return t, ok
}

// newValue allocates a value of the pointer type t.
func newValue(t reflect.Type) any {
	return reflect.New(t.Elem()).Interface()
}
