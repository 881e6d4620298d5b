package ftfz

import (
	"fmt"
	"sync"

	"github.com/zoobzio/ftfz/ftf"
)

// stringTable maps string values to small interned indexes. Index 0 is
// never issued. The lock covers the whole lookup / allocate / write-intern
// sequence so the intern record always reaches the sink before any record
// referencing the new index, and two callers never race to two indexes for
// the same value.
type stringTable struct {
	byValue map[string]uint16
	nextID  uint16
	wrapped bool
	mu      sync.Mutex
}

func newStringTable() *stringTable {
	return &stringTable{
		byValue: make(map[string]uint16),
		nextID:  1,
	}
}

// ref returns an interned reference for value, writing the defining string
// record on first use. If that write fails, the mapping is not committed
// and the value is referenced inline instead, so the trace never contains
// a reference to an index whose definition never landed.
func (t *stringTable) ref(value string, out *sink) ftf.StringRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byValue[value]; ok {
		return ftf.StringIndexRef(id)
	}

	id := t.nextID
	if err := out.write(ftf.NewStringRecord(id, value)); err != nil {
		out.report(fmt.Errorf("ftfz: write string record: %w", err))
		return ftf.InlineStringRef(value)
	}
	t.byValue[value] = id

	t.nextID++
	if t.nextID > ftf.MaxStringIndex {
		t.nextID = 1
		if !t.wrapped {
			t.wrapped = true
			out.report(fmt.Errorf("ftfz: string index space exhausted after %d values; indexes are being reused", ftf.MaxStringIndex))
		}
	}
	return ftf.StringIndexRef(id)
}

// threadKey identifies one observed execution thread.
type threadKey struct {
	process uint64
	thread  uint64
}

// threadTable maps (process, thread) pairs to small interned indexes. Same
// discipline as stringTable, over a narrower 8-bit index space.
type threadTable struct {
	byID    map[threadKey]uint8
	nextID  uint8
	wrapped bool
	mu      sync.Mutex
}

func newThreadTable() *threadTable {
	return &threadTable{
		byID:   make(map[threadKey]uint8),
		nextID: 1,
	}
}

// ref returns an interned reference for the identity pair, writing the
// defining thread record on first observation. On write failure the
// identity is carried inline and the mapping is retried next time.
func (t *threadTable) ref(process, thread uint64, out *sink) ftf.ThreadRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := threadKey{process: process, thread: thread}
	if id, ok := t.byID[key]; ok {
		return ftf.ThreadIndexRef(id)
	}

	id := t.nextID
	if err := out.write(ftf.NewThreadRecord(id, process, thread)); err != nil {
		out.report(fmt.Errorf("ftfz: write thread record: %w", err))
		return ftf.InlineThreadRef(process, thread)
	}
	t.byID[key] = id

	t.nextID++
	if t.nextID == 0 { // uint8 overflow past MaxThreadIndex
		t.nextID = 1
		if !t.wrapped {
			t.wrapped = true
			out.report(fmt.Errorf("ftfz: thread index space exhausted after %d threads; indexes are being reused", ftf.MaxThreadIndex))
		}
	}
	return ftf.ThreadIndexRef(id)
}
