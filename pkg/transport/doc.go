/*
Package transport defines the event-driven connection contract that the
buffered writer sits on top of.

A Transport never blocks. It accepts at most Space() bytes per Write and
reports progress through four events delivered to a single registered
Handler:

  - poll: a periodic opportunity to send
  - ack: the peer confirmed n bytes, freeing send window
  - data: bytes arrived from the peer
  - disconnect: the connection is gone; fired at most once

Implementations live in subpackages:

  - mem: scriptable in-memory transport for tests and in-process pipes
  - tcp: net.Conn backed transport with a bounded send window
  - redis: Redis pub/sub backed transport
  - poller: cron-driven poll source shared by transports

# Event delivery rules

Events must not be delivered synchronously from inside Write, Space,
CanSend or Connected, because the owner calls those while holding its own
lock. Close and Abort may deliver disconnect synchronously. Events may
arrive on any goroutine.
*/
package transport
