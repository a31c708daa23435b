package engraver

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID returns the runtime id of the calling goroutine, or 0 if the
// stack header cannot be parsed. It is only compared against the worker's
// own id to detect Shutdown calls made from an Inline sink callback.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header: "goroutine 18 [running]:"
	b, ok := bytes.CutPrefix(buf[:n], []byte("goroutine "))
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
