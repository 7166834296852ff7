package helper

import (
	"bytes"
	"runtime"
	"strconv"
)

// CurrentGoroutineID returns the ID of the calling goroutine.
//
// It parses the header of a stack trace, which has the form
// "goroutine 18 [running]:". This is only suitable for tests that assert
// on which goroutine a callback was invoked in.
func CurrentGoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	buf = buf[:bytes.IndexByte(buf, ' ')]

	id, err := strconv.ParseUint(string(buf), 10, 64)
	if err != nil {
		panic("failed to parse goroutine ID: " + err.Error())
	}

	return id
}
