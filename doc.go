/*
Package asyncwire provides a blocking io.Writer over non-blocking,
event-driven network transports.

Streaming (pkg/streaming):
  - writer: ring-buffered Writer that drains on transport poll and ack events

Transports (pkg/transport):
  - mem: scriptable in-memory transport for tests and simulations
  - tcp: net.Conn adapter with a bounded send window
  - redis: Redis pub/sub channel pair as a byte stream
  - poller: cron-driven poll events shared by many transports

Supporting packages:
  - ringbuf: fixed-capacity byte ring buffer
  - metrics: Prometheus instrumentation

Example usage:

	import (
		"github.com/vnykmshr/asyncwire/pkg/streaming/writer"
		"github.com/vnykmshr/asyncwire/pkg/transport/tcp"
	)

	t, _ := tcp.Dial(ctx, "localhost:9000", tcp.DefaultConfig())
	w, _ := writer.NewWithTransport(t, writer.DefaultBufferSize, writer.DefaultConfig())
	w.OnClose(func(*writer.Writer) { log.Println("disconnected") })

	fmt.Fprintf(w, "hello\n") // blocks only while the buffer is full

See individual package documentation for detailed usage and examples.
*/
package asyncwire
