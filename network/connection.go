package network

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// subscriber is one websocket connection on the feed
// Frames are queued and written by writeLoop; a full queue drops the frame
type subscriber struct {
	ID       uuid.UUID
	Addr     string
	LastSeen atomic.Int64 // UnixNano

	conn   *websocket.Conn
	sendCh chan []byte
	cfg    Config

	closeCh   chan struct{}
	closeOnce sync.Once
}

func newSubscriber(id uuid.UUID, conn *websocket.Conn, cfg Config) *subscriber {
	s := &subscriber{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		sendCh:  make(chan []byte, cfg.SendQueueSize),
		cfg:     cfg,
		closeCh: make(chan struct{}),
	}
	s.LastSeen.Store(time.Now().UnixNano())
	return s
}

// send queues a frame; false when the subscriber is closing or its queue is full
func (s *subscriber) send(data []byte) bool {
	select {
	case <-s.closeCh:
		return false
	default:
	}

	select {
	case s.sendCh <- data:
		return true
	default:
		return false
	}
}

// close sends a close frame and tears the connection down
func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(s.cfg.WriteTimeout))
		s.conn.Close()
	})
}

func (s *subscriber) done() <-chan struct{} {
	return s.closeCh
}

// readLoop drains client messages so control frames are processed; the feed ignores payloads
func (s *subscriber) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(4096)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		s.LastSeen.Store(time.Now().UnixNano())
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
		s.LastSeen.Store(time.Now().UnixNano())
	}
}

// writeLoop is the only writer on the connection
func (s *subscriber) writeLoop() {
	defer s.close()

	ping := time.NewTicker(s.cfg.pingInterval())
	defer ping.Stop()

	for {
		select {
		case <-s.closeCh:
			return
		case data := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
