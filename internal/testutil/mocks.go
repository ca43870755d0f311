package testutil

import (
	"bytes"
	"sync"
	"testing"
)

// CallbackTracker counts invocations of an observer callback and keeps the
// last value it was marked with.
type CallbackTracker struct {
	mu    sync.Mutex
	count int
	value interface{}
}

// NewCallbackTracker creates an empty tracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Mark records one call, optionally with a value.
func (ct *CallbackTracker) Mark(value ...interface{}) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count++
	if len(value) > 0 {
		ct.value = value[0]
	}
}

// Called reports whether Mark was called at least once.
func (ct *CallbackTracker) Called() bool {
	return ct.CallCount() > 0
}

// CallCount returns the number of Mark calls.
func (ct *CallbackTracker) CallCount() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.count
}

// Value returns the last marked value.
func (ct *CallbackTracker) Value() interface{} {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.value
}

// Reset clears the count and value.
func (ct *CallbackTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count = 0
	ct.value = nil
}

// AssertCallCount fails the test unless the tracker saw exactly want calls.
func (ct *CallbackTracker) AssertCallCount(t *testing.T, want int) {
	t.Helper()
	if got := ct.CallCount(); got != want {
		t.Fatalf("callback called %d times, want %d", got, want)
	}
}

// ByteRecorder accumulates payloads handed to a data observer.
type ByteRecorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	chunks int
}

// Record appends a copy of p.
func (br *ByteRecorder) Record(p []byte) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.buf.Write(p)
	br.chunks++
}

// Bytes returns a copy of everything recorded.
func (br *ByteRecorder) Bytes() []byte {
	br.mu.Lock()
	defer br.mu.Unlock()
	return append([]byte(nil), br.buf.Bytes()...)
}

// String returns everything recorded as a string.
func (br *ByteRecorder) String() string {
	return string(br.Bytes())
}

// Chunks returns the number of Record calls.
func (br *ByteRecorder) Chunks() int {
	br.mu.Lock()
	defer br.mu.Unlock()
	return br.chunks
}
