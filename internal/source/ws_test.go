package source

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

func wsTestServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the connection up briefly so the client reads everything.
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSFeedStreamsEntries(t *testing.T) {
	srv := wsTestServer(t, []string{
		`{"kind":"stdout","text":"first"}`,
		`{"kind":"stderr","text":"second"}`,
		`not json`,
	})

	f := NewWSFeed(wsURL(srv))
	defer f.Close()

	var last stream.Update
	deadline := time.After(3 * time.Second)
	for len(last.Entries) < 3 {
		select {
		case ev := <-f.Events():
			require.NoError(t, ev.Err)
			if !ev.Reset {
				last = ev.Update
			}
		case <-deadline:
			t.Fatalf("timed out; got %d entries", len(last.Entries))
		}
	}

	assert.Equal(t, "first", last.Entries[0].Text)
	assert.Equal(t, stream.KindStdout, last.Entries[0].Kind)
	assert.Equal(t, stream.KindStderr, last.Entries[1].Kind)
	assert.Equal(t, "not json", last.Entries[2].Text, "non-JSON frames render raw")
	assert.Equal(t, "W0", last.Entries[0].Key)
}

func TestWSFeedUnreachableIsTerminal(t *testing.T) {
	old := wsBaseBackoff
	wsBaseBackoff = 5 * time.Millisecond
	defer func() { wsBaseBackoff = old }()

	f := NewWSFeed("ws://127.0.0.1:1/nope")
	defer f.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-f.Events():
			if !ok {
				t.Fatal("channel closed without a terminal error")
			}
			if ev.Err != nil {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for terminal error")
		}
	}
}
