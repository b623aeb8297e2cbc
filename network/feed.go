package network

import (
	"context"
	"log"
	"time"
)

// Feed broadcasts a snapshot to the hub on a fixed interval
type Feed struct {
	hub      *Hub
	source   Snapshotter
	interval time.Duration
	logger   *log.Logger

	seq uint64
}

// NewFeed creates a feed; a nil logger uses log.Default()
func NewFeed(hub *Hub, source Snapshotter, interval time.Duration, logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{hub: hub, source: source, interval: interval, logger: logger}
}

// Publish sends one state frame now and returns the number of subscribers that took it
func (f *Feed) Publish() int {
	if f.hub.Count() == 0 {
		return 0
	}

	f.seq++
	view := f.source.Snapshot()
	data, err := Frame{
		Type:   MsgState,
		Seq:    f.seq,
		SentAt: time.Now().UnixMilli(),
		State:  &view,
	}.Encode()
	if err != nil {
		f.logger.Printf("failed to marshal state frame: %v", err)
		return 0
	}
	return f.hub.Broadcast(data)
}

// Run publishes every interval until ctx is done
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Publish()
		}
	}
}
