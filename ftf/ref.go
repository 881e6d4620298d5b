package ftf

// StringRef names a string either by interned index or inline value.
// The zero value is the empty reference.
type StringRef struct {
	// Value is the literal string when Inline is set.
	Value string
	// Index is the interned string index when Inline is not set.
	Index uint16
	// Inline marks the reference as carrying its value in the record body.
	Inline bool
}

// StringIndexRef references a previously interned string by index.
func StringIndexRef(index uint16) StringRef {
	return StringRef{Index: index & MaxStringIndex}
}

// InlineStringRef embeds the string value directly in the record. The
// empty string has no inline wire form (a zero field already means
// "empty"), so it normalizes to the empty reference and round-trips as
// such through a Reader.
func InlineStringRef(value string) StringRef {
	if value == "" {
		return StringRef{}
	}
	return StringRef{Value: truncate(value, MaxInlineStringLength), Inline: true}
}

// field returns the 16-bit header encoding of the reference.
func (r StringRef) field() uint64 {
	if r.Inline {
		if len(r.Value) == 0 {
			return 0
		}
		return 0x8000 | uint64(len(r.Value))
	}
	return uint64(r.Index & MaxStringIndex)
}

// payloadWords returns the number of body words the reference occupies.
func (r StringRef) payloadWords() int {
	if r.Inline {
		return paddedWords(len(r.Value))
	}
	return 0
}

// encode appends the inline payload, if any.
func (r StringRef) encode(e *encoder) {
	if r.Inline && len(r.Value) > 0 {
		e.stringPadded(r.Value)
	}
}

// ThreadRef names a (process, thread) identity either by interned index or
// inline koid pair. A zero index field on the wire means inline.
type ThreadRef struct {
	// Process and Thread carry the identity when Inline is set.
	Process uint64
	Thread  uint64
	// Index is the interned thread index when Inline is not set.
	Index uint8
	// Inline marks the reference as carrying the identity in the record body.
	Inline bool
}

// ThreadIndexRef references a previously interned thread by index.
func ThreadIndexRef(index uint8) ThreadRef {
	return ThreadRef{Index: index}
}

// InlineThreadRef embeds the process/thread pair directly in the record.
func InlineThreadRef(process, thread uint64) ThreadRef {
	return ThreadRef{Process: process, Thread: thread, Inline: true}
}

// field returns the 8-bit header encoding of the reference.
func (r ThreadRef) field() uint64 {
	if r.Inline {
		return 0
	}
	return uint64(r.Index)
}

// payloadWords returns the number of body words the reference occupies.
func (r ThreadRef) payloadWords() int {
	if r.Inline {
		return 2
	}
	return 0
}

// encode appends the inline process/thread words, if any.
func (r ThreadRef) encode(e *encoder) {
	if r.Inline {
		e.word(r.Process)
		e.word(r.Thread)
	}
}
