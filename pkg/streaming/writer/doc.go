/*
Package writer provides a blocking io.Writer on top of an event-driven transport.

A Writer owns a bounded ring buffer between the caller and a non-blocking
transport. Write copies bytes into the buffer and returns once all of them are
queued. When the buffer is full, Write waits for the transport to report send
capacity, drains, and continues. Drains also happen on every poll and ack event
the transport delivers.

# Quick Start

	t, _ := tcp.Dial(ctx, "localhost:9000", tcp.DefaultConfig())
	w, _ := writer.NewWithTransport(t, writer.DefaultBufferSize, writer.DefaultConfig())
	defer w.Close()

	fmt.Fprintf(w, "GET / HTTP/1.0\r\n\r\n")

# Lifecycle

A Writer is unbound until Bind (or Assign) attaches a transport. It stays
bound until the transport reports a disconnect or Release is called; either
one runs teardown exactly once and calls the OnClose observer. Close only asks
the transport to close; teardown follows when the disconnect arrives.

	w.OnClose(func(w *writer.Writer) { log.Println("connection gone") })
	w.OnData(func(w *writer.Writer, p []byte) { handle(p) })

Rebinding with Bind aborts the previous transport and discards whatever it
still had queued. Events from the old transport are ignored afterwards.

# Errors

Write on an unbound or disconnected writer returns 0 and
errors.ErrNotConnected without touching the buffer. A Write blocked on
backpressure when the connection drops returns the count it had buffered and
errors.ErrDisconnected. WriteContext returns ctx.Err() when its context ends
first.

# Metrics

	w, _ := writer.NewWithMetrics(t, 4096, "upstream")

or set Config.Metrics to a registry built with metrics.NewRegistry.
*/
package writer
