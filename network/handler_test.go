package network

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/endless-runner/game"
	"github.com/lixenwraith/endless-runner/save"
	"github.com/lixenwraith/endless-runner/status"
	"github.com/lixenwraith/endless-runner/track"
)

type feedFixture struct {
	session *game.Session
	hub     *Hub
	feed    *Feed
	srv     *httptest.Server
}

func newFeedFixture(t *testing.T, maxSubs int) *feedFixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	reg := status.NewRegistry()

	session, err := game.NewSession(game.Options{
		Store:    save.NewMemoryStore(),
		Source:   track.NewSource(3),
		Registry: reg,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if _, err := session.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	session.Tick(0.1)

	cfg := DefaultConfig()
	cfg.MaxSubscribers = maxSubs
	hub := NewHub(cfg, logger, reg)
	handler := NewHandler(hub, session, HandlerConfig{Logger: logger})
	srv := httptest.NewServer(NewMux(handler))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	return &feedFixture{
		session: session,
		hub:     hub,
		feed:    NewFeed(hub, session, time.Hour, logger),
		srv:     srv,
	}
}

func websocketURL(t *testing.T, baseURL string) string {
	t.Helper()

	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.Path = "/ws"
	return parsed.String()
}

func dial(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, baseURL), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	frame, err := DecodeFrame(payload)
	if err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	return frame
}

func TestHandleSendsWelcomeWithState(t *testing.T) {
	f := newFeedFixture(t, 4)
	conn := dial(t, f.srv.URL)

	frame := readFrame(t, conn)
	if frame.Type != MsgWelcome || frame.Ver != ProtocolVersion {
		t.Fatalf("expected welcome frame, got %+v", frame)
	}
	if _, err := uuid.Parse(frame.ID); err != nil {
		t.Errorf("expected subscriber uuid, got %q", frame.ID)
	}
	if frame.State == nil || len(frame.State.Segments) != 1 || frame.State.Segments[0].Position != 50 {
		t.Fatalf("expected initial state with one segment, got %+v", frame.State)
	}
}

func TestFeedPublishesState(t *testing.T) {
	f := newFeedFixture(t, 4)
	conn := dial(t, f.srv.URL)
	readFrame(t, conn)

	f.session.Collect()
	if n := f.feed.Publish(); n != 1 {
		t.Fatalf("expected one subscriber to take the frame, got %d", n)
	}

	frame := readFrame(t, conn)
	if frame.Type != MsgState || frame.Seq != 1 {
		t.Fatalf("expected first state frame, got %+v", frame)
	}
	if frame.State.Pickups != 1 {
		t.Errorf("expected pickup in state, got %d", frame.State.Pickups)
	}
	if frame.State.Metrics.Ints["network.subscribers"] != 1 {
		t.Errorf("expected subscriber metric, got %+v", frame.State.Metrics.Ints)
	}
}

func TestHandleRejectsWhenFull(t *testing.T) {
	f := newFeedFixture(t, 1)
	first := dial(t, f.srv.URL)
	readFrame(t, first)

	second := dial(t, f.srv.URL)
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := second.ReadMessage()

	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseTryAgainLater {
		t.Fatalf("expected try-again-later close, got %v", err)
	}
	if f.hub.Count() != 1 {
		t.Errorf("expected hub to keep one subscriber, got %d", f.hub.Count())
	}
}

func TestHubRemovesClosedSubscriber(t *testing.T) {
	f := newFeedFixture(t, 4)
	conn := dial(t, f.srv.URL)
	readFrame(t, conn)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for f.hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.hub.Count() != 0 {
		t.Fatalf("expected subscriber removed after client close")
	}
	if n := f.feed.Publish(); n != 0 {
		t.Errorf("expected nothing published with no subscribers, got %d", n)
	}
}

func TestHubCloseDisconnectsSubscribers(t *testing.T) {
	f := newFeedFixture(t, 4)
	conn := dial(t, f.srv.URL)
	frame := readFrame(t, conn)

	f.hub.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection closed by hub")
	}

	id := uuid.MustParse(frame.ID)
	f.hub.Unsubscribe(id)
	if _, err := f.hub.Subscribe(nil, nil); !errors.Is(err, ErrHubClosed) {
		t.Errorf("expected ErrHubClosed, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	f := newFeedFixture(t, 4)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Status      string `json:"status"`
		Subscribers int    `json:"subscribers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode health payload: %v", err)
	}
	if payload.Status != "ok" || payload.Subscribers != 0 {
		t.Errorf("unexpected health payload %+v", payload)
	}
}
