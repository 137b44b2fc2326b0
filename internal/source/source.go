// Package source produces full-snapshot stream updates from files, local
// commands, agent transcripts, and websocket feeds. Sources push; the UI
// owns pacing (the renderer's batcher coalesces bursts).
package source

import (
	"github.com/asheshgoplani/taildeck/internal/logging"
	"github.com/asheshgoplani/taildeck/internal/stream"
)

var srcLog = logging.ForComponent(logging.CompSource)

// Event is one notification from a source. Exactly one of Update/Err/Reset
// is meaningful: a Reset announces a new buffer generation (e.g. the file
// was truncated), an Err is terminal and the source stops after sending it.
type Event struct {
	Update stream.Update
	Reset  bool
	Err    error
}

// Source is a running producer of snapshot updates.
type Source interface {
	// Events delivers updates until the source is closed or fails
	// terminally. The channel closes after a terminal error is sent.
	Events() <-chan Event

	// Close stops the source. Idempotent.
	Close() error
}

// snapshot returns a full-length-capped copy view of entries, so later
// appends by the producer reallocate instead of mutating what the consumer
// already holds.
func snapshot(entries []stream.Entry) []stream.Entry {
	return entries[:len(entries):len(entries)]
}
