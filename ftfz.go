// Package ftfz is an instrumentation sink that converts span and event
// hooks into a compact binary trace in Fuchsia Trace Format (FTF).
//
// ftfz records only what opts in: a span or event carries the reserved
// boolean field "ftf" to be captured, and may carry the reserved string
// field "category" to group its records. Everything else produces no
// output and no side effects.
//
// Core Components:.
//   - Layer: receives span-create, span-close and event hooks and emits records.
//   - Tracer: a thin host adapter that drives the Layer through context propagation.
//   - ftf subpackage: the record codec (typed constructors, Write, Reader).
//
// Basic Usage:.
//
//	f, _ := os.Create("trace.ftf")
//	layer := ftfz.New(f)
//	tracer := ftfz.NewTracer(layer)
//
//	ctx, span := tracer.StartSpan(ctx, "checkout", ftfz.Capture(), ftfz.Category("billing"))
//	defer span.Finish()
//
//	// Instant event, inherits the span's category.
//	tracer.Event(ctx, "charge", ftfz.Int64("cents", 1250))
//
// Thread Safety:.
//
// Layer is safe for concurrent use by multiple goroutines. Records appear
// in the trace in the order their writes acquired the sink lock; there is
// no buffering or batching.
//
// Error Handling:.
//
// Write failures never reach the instrumented program. They are reported
// through Config.OnError, and a failed intern falls back to embedding the
// value inline so the trace never references an id that was not defined.
package ftfz

// Reserved field keys consumed by the capture filter.
const (
	// CaptureKey is the boolean field that opts a span or event into the trace.
	CaptureKey = "ftf"
	// CategoryKey is the string field naming the record's category.
	CategoryKey = "category"
)

// DefaultCategory labels captured records that neither carry a category
// nor inherit one from a captured enclosing span.
const DefaultCategory = "default"

// Default provider identity, used when Config leaves them unset.
const (
	DefaultProviderID   uint32 = 1
	DefaultProviderName        = "trace"
)

// Capture returns the reserved field that opts a span or event into the trace.
func Capture() Field {
	return Bool(CaptureKey, true)
}

// Category returns the reserved field naming a span or event category.
func Category(name string) Field {
	return String(CategoryKey, name)
}
