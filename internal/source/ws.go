package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

// wsMessage is one entry pushed by a websocket feed.
type wsMessage struct {
	Kind string `json:"kind,omitempty"` // stdout, stderr, event
	Text string `json:"text"`
}

// maxReconnectAttempts bounds how long a dropped feed is retried before the
// failure is reported as terminal.
const maxReconnectAttempts = 5

// wsBaseBackoff is the initial retry delay, doubled per failed attempt.
// Variable so tests can shorten it.
var wsBaseBackoff = time.Second

// WSFeed subscribes to a JSON entry feed over a websocket. Dropped
// connections are retried with doubling backoff; entries received before
// the drop are kept, the feed appends to the same generation.
type WSFeed struct {
	url    string
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	mu   sync.Mutex
	conn *websocket.Conn

	entries []stream.Entry
}

// NewWSFeed connects to url and begins streaming.
func NewWSFeed(url string) *WSFeed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &WSFeed{
		url:    url,
		events: make(chan Event, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	go f.run()
	return f
}

// Events implements Source.
func (f *WSFeed) Events() <-chan Event {
	return f.events
}

// Close implements Source.
func (f *WSFeed) Close() error {
	f.closeOnce.Do(func() {
		f.cancel()
		f.mu.Lock()
		if f.conn != nil {
			f.conn.Close()
		}
		f.mu.Unlock()
	})
	return nil
}

func (f *WSFeed) run() {
	defer close(f.events)

	backoff := wsBaseBackoff
	attempts := 0
	for {
		if f.ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(f.ctx, f.url, nil)
		if err != nil {
			attempts++
			if attempts >= maxReconnectAttempts {
				f.send(Event{Err: fmt.Errorf("source: dial %s: %w", f.url, err)})
				return
			}
			srcLog.Warn("ws_dial_failed",
				slog.String("url", f.url),
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(backoff):
			case <-f.ctx.Done():
				return
			}
			backoff *= 2
			continue
		}

		f.mu.Lock()
		f.conn = conn
		f.mu.Unlock()
		attempts = 0
		backoff = wsBaseBackoff

		if err := f.readLoop(conn); err != nil {
			if f.ctx.Err() != nil {
				return
			}
			srcLog.Warn("ws_read_failed", slog.String("url", f.url), slog.String("error", err.Error()))
		}
	}
}

func (f *WSFeed) readLoop(conn *websocket.Conn) error {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Non-JSON frames show as raw text.
			msg = wsMessage{Text: string(data)}
		}

		idx := len(f.entries)
		f.entries = append(f.entries, stream.Entry{
			Key:           fmt.Sprintf("W%d", idx),
			Kind:          wsKind(msg.Kind),
			Text:          msg.Text,
			OriginalIndex: idx,
		})

		appendKind := stream.AppendRunning
		if idx == 0 {
			appendKind = stream.AppendInitial
		}
		f.send(Event{Update: stream.Update{
			Entries: snapshot(f.entries),
			Append:  appendKind,
		}})
	}
}

func wsKind(s string) stream.Kind {
	switch s {
	case "stderr":
		return stream.KindStderr
	case "event":
		return stream.KindEvent
	}
	return stream.KindStdout
}

func (f *WSFeed) send(e Event) {
	select {
	case f.events <- e:
	case <-f.ctx.Done():
	}
}
