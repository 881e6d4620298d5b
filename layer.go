package ftfz

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/zoobzio/ftfz/ftf"
)

// SpanID identifies one span instance to the layer. Ids are assigned by
// the host (the bundled Tracer uses a counter); 0 means "no span".
type SpanID uint64

// spanMeta memoizes the capture decision made when a span was created.
// It is written once, read by descendant events and by the close hook,
// and deleted when the span closes. Category is empty when the span did
// not declare one.
type spanMeta struct {
	name     string
	category string
	captured bool
}

// Layer converts span and event hooks into FTF records on a single shared
// sink. Safe for concurrent use by multiple goroutines: the string table,
// the thread table and the sink each have their own lock, and no lock is
// held across a host callback.
type Layer struct {
	out     *sink
	clock   clockz.Clock
	strings *stringTable
	threads *threadTable

	start     time.Time
	processID uint64

	mu    sync.RWMutex // guards spans
	spans map[SpanID]spanMeta
}

// New creates a layer writing to w with default configuration.
func New(w io.Writer) *Layer {
	return NewWithConfig(w, Config{})
}

// NewWithConfig creates a layer writing to w. The magic number and the
// provider descriptor are written here, exactly once, before any other
// record; failures go to the error side channel like every other write.
// The monotonic timestamp reference is fixed at this point.
func NewWithConfig(w io.Writer, cfg Config) *Layer {
	cfg = cfg.withDefaults()

	l := &Layer{
		out:       &sink{w: w, onError: cfg.OnError},
		clock:     cfg.Clock,
		strings:   newStringTable(),
		threads:   newThreadTable(),
		processID: cfg.ProcessID,
		spans:     make(map[SpanID]spanMeta),
	}

	if err := l.out.write(ftf.NewMagicRecord()); err != nil {
		l.out.report(fmt.Errorf("ftfz: write magic number: %w", err))
	}
	if err := l.out.write(ftf.NewProviderInfoRecord(cfg.ProviderID, cfg.ProviderName)); err != nil {
		l.out.report(fmt.Errorf("ftfz: write provider info: %w", err))
	}

	l.start = l.clock.Now()
	return l
}

// OnSpanStart handles span creation. The capture decision is made from the
// span's own fields only, never inherited, and is frozen in the metadata
// store so events and the close hook read it without recomputation. A
// captured span emits a duration-begin record carrying its fields.
func (l *Layer) OnSpanStart(id SpanID, name string, fields []Field) {
	dec := evaluate(fields)

	meta := spanMeta{name: name, captured: dec.captured}
	if dec.hasCategory {
		meta.category = dec.category
	}
	l.mu.Lock()
	l.spans[id] = meta
	l.mu.Unlock()

	if !meta.captured {
		return
	}

	category := meta.category
	if category == "" {
		category = DefaultCategory
	}

	threadRef := l.threadRef()
	categoryRef := l.stringRef(category)
	nameRef := l.stringRef(name)
	args := l.arguments(fields)

	rec := ftf.NewDurationBeginRecord(l.now(), threadRef, categoryRef, nameRef, args)
	if err := l.out.write(rec); err != nil {
		l.out.report(fmt.Errorf("ftfz: write duration begin: %w", err))
	}
}

// OnSpanEnd handles span close. An uncaptured span is a no-op: no record,
// no interning. A captured span emits a duration-end record; end records
// never carry arguments, pairing with the begin record is by name, thread
// and order. The span's metadata is released here.
func (l *Layer) OnSpanEnd(id SpanID) {
	l.mu.Lock()
	meta, ok := l.spans[id]
	delete(l.spans, id)
	l.mu.Unlock()

	if !ok || !meta.captured {
		return
	}

	category := meta.category
	if category == "" {
		category = DefaultCategory
	}

	threadRef := l.threadRef()
	categoryRef := l.stringRef(category)
	nameRef := l.stringRef(meta.name)

	rec := ftf.NewDurationEndRecord(l.now(), threadRef, categoryRef, nameRef)
	if err := l.out.write(rec); err != nil {
		l.out.report(fmt.Errorf("ftfz: write duration end: %w", err))
	}
}

// OnEvent handles an instant event. active names the nearest enclosing
// span as known to the host, or 0. The event is captured when its own
// fields carry the capture flag set true, or when the enclosing span is
// captured. The category comes from the event's own field, else from a
// captured enclosing span, else DefaultCategory. An uncaptured event has
// no observable effect at all.
func (l *Layer) OnEvent(name string, fields []Field, active SpanID) {
	dec := evaluate(fields)

	captured := dec.captured
	category := dec.category
	hasCategory := dec.hasCategory

	if !captured || !hasCategory {
		l.mu.RLock()
		meta, ok := l.spans[active]
		l.mu.RUnlock()
		if ok && meta.captured {
			captured = true
			if !hasCategory && meta.category != "" {
				category = meta.category
				hasCategory = true
			}
		}
	}

	if !captured {
		return
	}
	if !hasCategory || category == "" {
		category = DefaultCategory
	}

	threadRef := l.threadRef()
	categoryRef := l.stringRef(category)
	nameRef := l.stringRef(name)
	args := l.arguments(fields)

	rec := ftf.NewInstantRecord(l.now(), threadRef, categoryRef, nameRef, args)
	if err := l.out.write(rec); err != nil {
		l.out.report(fmt.Errorf("ftfz: write instant event: %w", err))
	}
}

// now returns nanoseconds elapsed since the layer's construction instant.
func (l *Layer) now() uint64 {
	d := l.clock.Now().Sub(l.start)
	if d < 0 {
		return 0
	}
	return uint64(d)
}

// stringRef interns value, emitting its string record on first use.
func (l *Layer) stringRef(value string) ftf.StringRef {
	return l.strings.ref(value, l.out)
}

// threadRef interns the calling goroutine's identity. If the goroutine id
// cannot be resolved, the record carries the identity inline rather than
// folding distinct goroutines into one shared table entry, and the failure
// is reported on the side channel.
func (l *Layer) threadRef() ftf.ThreadRef {
	gid, err := goroutineID()
	if err != nil {
		l.out.report(err)
		return ftf.InlineThreadRef(l.processID, 0)
	}
	return l.threads.ref(l.processID, gid, l.out)
}

// arguments converts a field set into codec arguments, interning names and
// string values. Reserved fields are included, like any other field. The
// record header caps the count at ftf.MaxArguments; extras are dropped
// with a diagnostic.
func (l *Layer) arguments(fields []Field) []ftf.Argument {
	if len(fields) == 0 {
		return nil
	}
	if len(fields) > ftf.MaxArguments {
		l.out.report(fmt.Errorf("ftfz: %d fields exceed the %d-argument record limit; dropping %d",
			len(fields), ftf.MaxArguments, len(fields)-ftf.MaxArguments))
		fields = fields[:ftf.MaxArguments]
	}

	args := make([]ftf.Argument, 0, len(fields))
	for _, f := range fields {
		name := l.stringRef(f.Key)
		switch f.kind {
		case kindString:
			args = append(args, ftf.StringArg(name, l.stringRef(f.str)))
		case kindInt64:
			args = append(args, ftf.Int64Arg(name, int64(f.num)))
		case kindUint64:
			args = append(args, ftf.Uint64Arg(name, f.num))
		case kindBool:
			args = append(args, ftf.BoolArg(name, f.b))
		case kindFloat64:
			args = append(args, ftf.Float64Arg(name, math.Float64frombits(f.num)))
		}
	}
	return args
}
