package ftf

import "io"

// Record is any trace record that can be appended to a sink. Records are
// immutable once constructed; Write may be called more than once.
type Record interface {
	Write(w io.Writer) error
}

// EventType distinguishes the event record flavors.
type EventType uint8

// Event record types (event header bits 16-19).
const (
	EventInstant       EventType = 0
	EventDurationBegin EventType = 2
	EventDurationEnd   EventType = 3
)

// MagicRecord is the one-word trace file magic number.
type MagicRecord struct{}

// NewMagicRecord builds the magic number record. It must be the first
// record of a trace.
func NewMagicRecord() MagicRecord {
	return MagicRecord{}
}

// Write appends the record to w.
func (MagicRecord) Write(w io.Writer) error {
	var e encoder
	e.word(MagicWord)
	return e.flush(w)
}

// ProviderInfoRecord declares the provider that produced the trace.
type ProviderInfoRecord struct {
	Name string
	ID   uint32
}

// NewProviderInfoRecord builds a provider descriptor. Names longer than
// MaxProviderNameLength are truncated.
func NewProviderInfoRecord(id uint32, name string) ProviderInfoRecord {
	return ProviderInfoRecord{ID: id, Name: truncate(name, MaxProviderNameLength)}
}

// Write appends the record to w.
func (r ProviderInfoRecord) Write(w io.Writer) error {
	size := 1 + paddedWords(len(r.Name))
	var e encoder
	e.word(uint64(typeMetadata) |
		uint64(size)<<4 |
		uint64(metadataProviderInfo)<<16 |
		uint64(r.ID)<<20 |
		uint64(len(r.Name))<<52)
	e.stringPadded(r.Name)
	return e.flush(w)
}

// StringRecord defines an interned string: all later records may reference
// the value by index instead of repeating it.
type StringRecord struct {
	Value string
	Index uint16
}

// NewStringRecord builds an intern record for the given index and value.
// Values longer than MaxStringLength are truncated.
func NewStringRecord(index uint16, value string) StringRecord {
	return StringRecord{Index: index & MaxStringIndex, Value: truncate(value, MaxStringLength)}
}

// Write appends the record to w.
func (r StringRecord) Write(w io.Writer) error {
	size := 1 + paddedWords(len(r.Value))
	var e encoder
	e.word(uint64(typeString) |
		uint64(size)<<4 |
		uint64(r.Index)<<16 |
		uint64(len(r.Value))<<32)
	e.stringPadded(r.Value)
	return e.flush(w)
}

// ThreadRecord defines an interned (process, thread) identity pair.
type ThreadRecord struct {
	Process uint64
	Thread  uint64
	Index   uint8
}

// NewThreadRecord builds an intern record binding index to the identity pair.
func NewThreadRecord(index uint8, process, thread uint64) ThreadRecord {
	return ThreadRecord{Index: index, Process: process, Thread: thread}
}

// Write appends the record to w.
func (r ThreadRecord) Write(w io.Writer) error {
	var e encoder
	e.word(uint64(typeThread) |
		uint64(3)<<4 |
		uint64(r.Index)<<16)
	e.word(r.Process)
	e.word(r.Thread)
	return e.flush(w)
}

// EventRecord is a timestamped trace event: an instant occurrence or one
// side of a duration begin/end pair.
type EventRecord struct {
	Args      []Argument
	Timestamp uint64
	Thread    ThreadRef
	Category  StringRef
	Name      StringRef
	Type      EventType
}

// NewInstantRecord builds a zero-duration event record.
func NewInstantRecord(ts uint64, thread ThreadRef, category, name StringRef, args []Argument) EventRecord {
	return newEvent(EventInstant, ts, thread, category, name, args)
}

// NewDurationBeginRecord builds the opening half of a duration pair.
func NewDurationBeginRecord(ts uint64, thread ThreadRef, category, name StringRef, args []Argument) EventRecord {
	return newEvent(EventDurationBegin, ts, thread, category, name, args)
}

// NewDurationEndRecord builds the closing half of a duration pair. End
// records never carry arguments; pairing is by name, thread and order.
func NewDurationEndRecord(ts uint64, thread ThreadRef, category, name StringRef) EventRecord {
	return newEvent(EventDurationEnd, ts, thread, category, name, nil)
}

func newEvent(typ EventType, ts uint64, thread ThreadRef, category, name StringRef, args []Argument) EventRecord {
	if len(args) > MaxArguments {
		args = args[:MaxArguments]
	}
	return EventRecord{
		Type:      typ,
		Timestamp: ts,
		Thread:    thread,
		Category:  category,
		Name:      name,
		Args:      args,
	}
}

// Write appends the record to w.
func (r EventRecord) Write(w io.Writer) error {
	size := 2 + r.Thread.payloadWords() + r.Category.payloadWords() + r.Name.payloadWords()
	for _, a := range r.Args {
		size += a.sizeWords()
	}

	var e encoder
	e.word(uint64(typeEvent) |
		uint64(size)<<4 |
		uint64(r.Type)<<16 |
		uint64(len(r.Args))<<20 |
		r.Thread.field()<<24 |
		r.Category.field()<<32 |
		r.Name.field()<<48)
	e.word(r.Timestamp)
	r.Thread.encode(&e)
	r.Category.encode(&e)
	r.Name.encode(&e)
	for _, a := range r.Args {
		a.encode(&e)
	}
	return e.flush(w)
}
