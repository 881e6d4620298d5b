package ftfz

import (
	"context"
	"sync"
)

// ActiveSpan is a handle on an open span. Safe for concurrent use by
// multiple goroutines.
type ActiveSpan struct {
	tracer   *Tracer
	name     string
	id       SpanID
	mu       sync.Mutex
	finished bool
}

// ID returns the span's identifier.
func (a *ActiveSpan) ID() SpanID {
	return a.id
}

// Name returns the span's name.
func (a *ActiveSpan) Name() string {
	return a.name
}

// Finish closes the span, emitting its duration-end record if the span was
// captured. Safe to call multiple times - subsequent calls are no-ops.
func (a *ActiveSpan) Finish() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finished {
		return
	}
	a.finished = true

	a.tracer.layer.OnSpanEnd(a.id)
}

// Context returns a new context with this span as the active span.
// The returned context can be used to start child spans.
func (a *ActiveSpan) Context(parent context.Context) context.Context {
	bundle := &contextBundle{tracer: a.tracer, span: a}
	return context.WithValue(parent, bundleKey, bundle)
}
