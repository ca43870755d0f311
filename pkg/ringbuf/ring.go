// Package ringbuf provides a fixed-capacity circular byte buffer.
//
// A Buffer never grows. Writes accept at most Free() bytes and reads return
// at most Available() bytes, in FIFO order. Free()+Available() always equals
// Cap(). A Buffer is not safe for concurrent use; callers synchronize.
package ringbuf

// Buffer is a bounded FIFO byte queue backed by a single slice.
type Buffer struct {
	data []byte
	head int // index of the oldest byte
	size int // bytes currently stored
}

// New allocates a Buffer holding up to capacity bytes.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Available returns the number of readable bytes.
func (b *Buffer) Available() int {
	return b.size
}

// Free returns the number of writable bytes.
func (b *Buffer) Free() int {
	return len(b.data) - b.size
}

// Write appends up to Free() bytes of p and returns how many were stored.
func (b *Buffer) Write(p []byte) int {
	n := len(p)
	if free := b.Free(); n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	tail := (b.head + b.size) % len(b.data)
	c := copy(b.data[tail:], p[:n])
	if c < n {
		copy(b.data, p[c:n])
	}
	b.size += n
	return n
}

// Peek copies up to Available() bytes into p without consuming them.
func (b *Buffer) Peek(p []byte) int {
	n := len(p)
	if n > b.size {
		n = b.size
	}
	if n == 0 {
		return 0
	}

	c := copy(p[:n], b.data[b.head:])
	if c < n {
		copy(p[c:n], b.data)
	}
	return n
}

// Discard drops up to n of the oldest bytes and returns how many were dropped.
func (b *Buffer) Discard(n int) int {
	if n > b.size {
		n = b.size
	}
	if n <= 0 {
		return 0
	}
	b.head = (b.head + n) % len(b.data)
	b.size -= n
	if b.size == 0 {
		b.head = 0
	}
	return n
}

// Read removes up to Available() bytes into p and returns the count.
func (b *Buffer) Read(p []byte) int {
	return b.Discard(b.Peek(p))
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.head = 0
	b.size = 0
}
