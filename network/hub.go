// Package network serves session snapshots to websocket subscribers
package network

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/endless-runner/status"
)

// ErrHubFull is returned when MaxSubscribers connections are already open
var ErrHubFull = errors.New("max subscribers reached")

// ErrHubClosed is returned by Subscribe after Close
var ErrHubClosed = errors.New("hub closed")

// Hub tracks subscribers and fans frames out to them
type Hub struct {
	cfg    Config
	logger *log.Logger

	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscriber
	closed bool
	wg     sync.WaitGroup

	statSubscribers *atomic.Int64
	statSent        *atomic.Int64
	statDropped     *atomic.Int64
}

// NewHub creates an empty hub; nil logger uses log.Default(), nil reg keeps metrics private
func NewHub(cfg Config, logger *log.Logger, reg *status.Registry) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Hub{
		cfg:             cfg,
		logger:          logger,
		subs:            make(map[uuid.UUID]*subscriber),
		statSubscribers: reg.Ints.Get("network.subscribers"),
		statSent:        reg.Ints.Get("network.frames_sent"),
		statDropped:     reg.Ints.Get("network.frames_dropped"),
	}
}

// Subscribe registers conn and starts its I/O loops
// welcome, when non-nil, is built with the new ID and queued before any broadcast frame
func (h *Hub) Subscribe(conn *websocket.Conn, welcome func(id uuid.UUID) ([]byte, error)) (uuid.UUID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return uuid.Nil, ErrHubClosed
	}
	if len(h.subs) >= h.cfg.MaxSubscribers {
		return uuid.Nil, ErrHubFull
	}

	id := uuid.New()
	sub := newSubscriber(id, conn, h.cfg)
	if welcome != nil {
		data, err := welcome(id)
		if err != nil {
			return uuid.Nil, err
		}
		sub.send(data)
	}
	h.subs[id] = sub
	h.statSubscribers.Store(int64(len(h.subs)))

	h.wg.Add(3)
	go func() {
		defer h.wg.Done()
		sub.readLoop()
	}()
	go func() {
		defer h.wg.Done()
		sub.writeLoop()
	}()
	go func() {
		defer h.wg.Done()
		h.monitor(sub)
	}()

	h.logger.Printf("Subscriber %s connected from %s", id, sub.Addr)
	return id, nil
}

// monitor removes the subscriber once either loop exits
func (h *Hub) monitor(sub *subscriber) {
	<-sub.done()

	h.mu.Lock()
	if h.subs[sub.ID] == sub {
		delete(h.subs, sub.ID)
	}
	h.statSubscribers.Store(int64(len(h.subs)))
	h.mu.Unlock()

	h.logger.Printf("Subscriber %s disconnected", sub.ID)
}

// Unsubscribe closes one subscriber; unknown IDs are ignored
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.RLock()
	sub, ok := h.subs[id]
	h.mu.RUnlock()
	if ok {
		sub.close()
	}
}

// Broadcast queues data for every subscriber and returns how many accepted it
// Slow subscribers lose the frame rather than stall the hub
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, sub := range h.subs {
		if sub.send(data) {
			sent++
		} else {
			h.statDropped.Add(1)
		}
	}
	h.statSent.Add(int64(sent))
	return sent
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber, waits for their loops, and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	h.wg.Wait()
}
