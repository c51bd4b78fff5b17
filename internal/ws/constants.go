package ws

import "time"

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long the peer may stay silent before it is dropped.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	sendBuffer = 256
)

// Frame types sent to clients.
const (
	FrameToken    = "token"
	FrameAnalysis = "analysis"
	FrameError    = "error"
	FramePong     = "pong"
	FrameAdvisory = "advisory"
)
