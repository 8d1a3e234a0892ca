package impl

import "time"

const (
	// Time allowed to write a message to an observer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from an observer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size. Console input arrives in tiny chunks.
	maxMessageSize = 64 * 1024

	// Per-observer send buffer. A client that falls this far behind the
	// broadcast stream is dropped rather than allowed to stall the hub.
	sendQueueSize = 256

	shutdownTimeout = 5 * time.Second

	// How long a watched process's Wait may linger after cancellation
	// before its pipes are forced closed. Descendants of the watched
	// command can inherit the merged output pipe and outlive the kill.
	procWaitDelay = 2 * time.Second
)
