package ftfz

import (
	"io"
	"sync"

	"github.com/zoobzio/ftfz/ftf"
)

// sink serializes all record writes to one shared destination. The order
// of records in the trace is exactly the order in which writers acquired
// the lock; there is no buffering, batching or reordering.
type sink struct {
	w       io.Writer
	onError func(error)
	mu      sync.Mutex
}

// write appends one record under the sink lock.
func (s *sink) write(rec ftf.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rec.Write(s.w)
}

// report sends a diagnostic to the side channel. Failures never propagate
// to the instrumented program.
func (s *sink) report(err error) {
	if err == nil {
		return
	}
	s.onError(err)
}
