/*
Package directive holds routing intents declared on message types.

Go has no class-level annotations, so declarations live in an explicit
Registry populated at startup, or are returned by the message itself through
the Declarer interface.
*/
package directive

import "reflect"

// Directive is an immutable routing intent identified by its concrete type.
type Directive interface {
	isDirective()
}

// Base is embedded by concrete directives.
type Base struct{}

func (Base) isDirective() {}

// Declarer is implemented by messages that declare their own directives.
type Declarer interface {
	Directives() []Directive
}

// Transport asks for delivery through the named channels.
type Transport struct {
	Base
	Names []string
}

// NewTransport declares delivery through names.
func NewTransport(names ...string) Transport {
	return Transport{Names: append([]string(nil), names...)}
}

// KindOf returns the concrete type identifying d.
func KindOf(d Directive) reflect.Type {
	if d == nil {
		return nil
	}
	return reflect.TypeOf(d)
}
