package envelope

import "github.com/shortlink-org/messenger/directive"

// Builder creates dispatch envelopes from declared directives.
type Builder struct {
	discovery   directive.Discovery
	transformer Transformer
}

// NewBuilder wires directive discovery with a transformer. A nil transformer
// behaves as an empty chain.
func NewBuilder(discovery directive.Discovery, transformer Transformer) *Builder {
	if transformer == nil {
		transformer = NewChainTransformer()
	}
	return &Builder{discovery: discovery, transformer: transformer}
}

// Build wraps msg and attaches one marker per declared directive, in
// declaration order. A directive that cannot be transformed aborts the build.
func (b *Builder) Build(msg any) (*Envelope, error) {
	inner := msg
	if env, ok := msg.(*Envelope); ok {
		inner = env.Message()
	}

	if b == nil || b.discovery == nil {
		return Wrap(msg), nil
	}

	declared := directive.NewSet(b.discovery.Directives(inner)...)
	if declared.Len() == 0 {
		return Wrap(msg), nil
	}

	markers := make([]Marker, 0, declared.Len())
	for _, d := range declared.All() {
		m, err := b.transformer.Transform(d)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}

	return Wrap(msg, markers...), nil
}
