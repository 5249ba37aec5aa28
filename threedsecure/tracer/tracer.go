// Package tracer abstracts distributed tracing for the verification flow so
// the core packages do not depend on OpenTelemetry APIs directly.
package tracer

import "context"

// Attribute is a key/value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value string
}

// String builds a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span is one traced unit of work.
type Span interface {
	// End completes the span, recording err if non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Noop returns a tracer that records nothing. It is the default when the
// host application does not configure tracing.
func Noop() Tracer {
	return noopTracer{}
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}
