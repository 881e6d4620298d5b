package ftfz

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

var stackPrefix = []byte("goroutine ")

// goroutineID returns the runtime id of the calling goroutine, parsed from
// the stack trace header. The id is stable for the goroutine's lifetime,
// which is what the thread table needs: first observation wins, and every
// later lookup from the same goroutine resolves to the same key.
func goroutineID() (uint64, error) {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGoroutineID(buf[:n])
}

// parseGoroutineID extracts the id from a stack trace header of the shape
// "goroutine 123 [running]:".
func parseGoroutineID(header []byte) (uint64, error) {
	s := bytes.TrimPrefix(header, stackPrefix)
	if len(s) == len(header) {
		return 0, fmt.Errorf("ftfz: unrecognized stack header %q", header)
	}
	if i := bytes.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ftfz: parse goroutine id from %q: %w", header, err)
	}
	return id, nil
}
