package ftfz

import (
	"context"
	"sync/atomic"
)

// contextBundle holds both tracer and span to reduce context allocations.
type contextBundle struct {
	tracer *Tracer
	span   *ActiveSpan
}

// bundleKeyType is a private type for context keys to avoid collisions.
type bundleKeyType string

const bundleKey bundleKeyType = "ftfz"

// Tracer is a thin host adapter over a Layer: it assigns span ids, tracks
// the active span through context, and drives the layer's hooks. Programs
// embedded in a framework that already provides span lifecycle callbacks
// can call the Layer hooks directly and skip the Tracer entirely.
// Safe for concurrent use by multiple goroutines.
type Tracer struct {
	layer  *Layer
	nextID atomic.Uint64
}

// NewTracer creates a tracer driving the given layer.
func NewTracer(layer *Layer) *Tracer {
	return &Tracer{layer: layer}
}

// StartSpan opens a span and returns a context carrying it as the active
// span for events and child spans. The span's capture decision is made
// here, from its own fields only; enclosing spans never influence it.
func (t *Tracer) StartSpan(ctx context.Context, name string, fields ...Field) (context.Context, *ActiveSpan) {
	// Handle nil context by creating a new one.
	if ctx == nil {
		ctx = context.Background()
	}

	id := SpanID(t.nextID.Add(1))
	t.layer.OnSpanStart(id, name, fields)

	span := &ActiveSpan{id: id, name: name, tracer: t}
	bundle := &contextBundle{tracer: t, span: span}
	return context.WithValue(ctx, bundleKey, bundle), span
}

// Event emits an instant event against the context's active span, if any.
func (t *Tracer) Event(ctx context.Context, name string, fields ...Field) {
	t.layer.OnEvent(name, fields, ActiveSpanID(ctx))
}

// ActiveSpanID extracts the id of the context's active span.
// Returns 0 if no span is present.
func ActiveSpanID(ctx context.Context) SpanID {
	if ctx == nil {
		return 0
	}
	if bundle, ok := ctx.Value(bundleKey).(*contextBundle); ok {
		return bundle.span.id
	}
	return 0
}
