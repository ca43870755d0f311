/*
Package streaming groups the byte-stream components of asyncwire.

  - writer: blocking io.Writer over an event-driven transport, with a
    bounded ring buffer and backpressure

Basic usage:

	w, _ := writer.NewWithTransport(t, writer.DefaultBufferSize, writer.DefaultConfig())
	defer w.Close()

	fmt.Fprintf(w, "hello")
*/
package streaming
