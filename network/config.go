package network

import (
	"time"

	"github.com/lixenwraith/endless-runner/parameter"
)

// Config holds feed server configuration
type Config struct {
	// Address to bind
	Address string

	// Connection limits
	MaxSubscribers int

	// Timing
	BroadcastInterval time.Duration
	WriteTimeout      time.Duration
	PongWait          time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() Config {
	return Config{
		Address:           parameter.ListenAddress,
		MaxSubscribers:    parameter.MaxSubscribers,
		BroadcastInterval: parameter.BroadcastInterval,
		WriteTimeout:      5 * time.Second,
		PongWait:          60 * time.Second,
		ReadBufferSize:    1024,
		WriteBufferSize:   64 * 1024,
		SendQueueSize:     parameter.SubscriberQueueSize,
	}
}

// pingInterval must stay below PongWait so a live client is never timed out
func (c Config) pingInterval() time.Duration {
	return c.PongWait * 9 / 10
}
