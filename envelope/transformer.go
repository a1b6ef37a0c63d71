package envelope

import (
	"github.com/shortlink-org/messenger/directive"
	"github.com/shortlink-org/messenger/errs"
)

// Transformer converts a directive into a marker the execution mechanism understands.
type Transformer interface {
	Supports(d directive.Directive) bool
	// Transform fails with a Logic error when d is not supported.
	Transform(d directive.Directive) (Marker, error)
}

// ChainTransformer delegates to the first member that supports a directive.
type ChainTransformer struct {
	transformers []Transformer
}

// NewChainTransformer builds a chain. Order is significant.
func NewChainTransformer(transformers ...Transformer) *ChainTransformer {
	chain := &ChainTransformer{transformers: make([]Transformer, 0, len(transformers))}
	for _, t := range transformers {
		if t != nil {
			chain.transformers = append(chain.transformers, t)
		}
	}
	return chain
}

// Supports reports whether any member supports d.
func (c *ChainTransformer) Supports(d directive.Directive) bool {
	if c == nil {
		return false
	}
	for _, t := range c.transformers {
		if t.Supports(d) {
			return true
		}
	}
	return false
}

// Transform returns the output of the first supporting member. Later members
// are never consulted.
func (c *ChainTransformer) Transform(d directive.Directive) (Marker, error) {
	if c != nil {
		for _, t := range c.transformers {
			if t.Supports(d) {
				return t.Transform(d)
			}
		}
	}

	return nil, errs.Logic("No marker transformer found for %q.", errs.TypeName(d))
}

// DefaultTransformer maps directive.Transport to TransportNamesMarker.
type DefaultTransformer struct{}

// Supports reports whether d is a transport directive.
func (DefaultTransformer) Supports(d directive.Directive) bool {
	_, ok := asTransport(d)
	return ok
}

// Transform converts a transport directive.
func (t DefaultTransformer) Transform(d directive.Directive) (Marker, error) {
	transport, ok := asTransport(d)
	if !ok {
		return nil, errs.Logic("Marker transformer %q does not support %q.", errs.TypeName(t), errs.TypeName(d))
	}

	return TransportNamesMarker{Names: append([]string(nil), transport.Names...)}, nil
}

func asTransport(d directive.Directive) (directive.Transport, bool) {
	switch v := d.(type) {
	case directive.Transport:
		return v, true
	case *directive.Transport:
		if v != nil {
			return *v, true
		}
	}
	return directive.Transport{}, false
}

// TransformerFunc adapts a typed function into a Transformer supporting directives of type D.
type TransformerFunc[D directive.Directive] func(d D) (Marker, error)

// Supports reports whether d is a D.
func (f TransformerFunc[D]) Supports(d directive.Directive) bool {
	_, ok := d.(D)
	return ok
}

// Transform calls f when d is a D.
func (f TransformerFunc[D]) Transform(d directive.Directive) (Marker, error) {
	typed, ok := d.(D)
	if !ok {
		return nil, errs.Logic("Marker transformer %q does not support %q.", errs.TypeName(f), errs.TypeName(d))
	}
	return f(typed)
}
