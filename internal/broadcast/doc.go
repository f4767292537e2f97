// Package broadcast implements the mock status feed: a WebSocket server that,
// for every accepted connection, writes a freshly generated status snapshot
// as one text frame, waits a fixed interval and repeats until the peer goes
// away or the server context is cancelled.
//
// Connections are independent. Each one owns its generator and goroutine,
// and nothing a client sends is interpreted.
package broadcast
