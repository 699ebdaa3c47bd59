package remote

import (
	"net/http"
	"time"
)

// Config holds connection settings for a Hub.
type Config struct {
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PongWait is how long a viewer may stay silent before it is closed.
	PongWait time.Duration

	// PingInterval is how often the hub pings viewers. Must be below PongWait.
	PingInterval time.Duration

	// SendBuffer is the number of frames queued per viewer before it is
	// dropped as too slow.
	SendBuffer int

	// MaxMessageSize bounds frames read from viewers.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of upgrade requests.
	// Default: same-origin check by gorilla/websocket.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns the default hub configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		PongWait:       60 * time.Second,
		PingInterval:   50 * time.Second,
		SendBuffer:     256,
		MaxMessageSize: 64 * 1024,
	}
}
