package stream

import (
	"log/slog"

	"github.com/asheshgoplani/taildeck/internal/logging"
)

var bufLog = logging.ForComponent(logging.CompStream)

// Buffer is the canonical ordered collection of entries committed to the
// view. Commits are wholesale replaces: the upstream source supplies the full
// snapshot in total order, so no merge logic lives here.
type Buffer struct {
	entries []Entry
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Commit replaces the buffer contents with the update's snapshot and returns
// the previous and new entry counts so the caller can classify growth.
// Duplicate keys are tolerated but logged; they break windowing equivalence.
func (b *Buffer) Commit(u Update) (prev, next int) {
	prev = len(b.entries)
	b.entries = u.Entries
	next = len(b.entries)

	if next > prev && next-prev <= 64 {
		// Only scan the appended region; full-buffer scans on every
		// commit are too expensive for large tails.
		seen := make(map[string]struct{}, next-prev)
		for _, e := range b.entries[prev:] {
			if _, dup := seen[e.Key]; dup {
				bufLog.Warn("duplicate_entry_key", slog.String("key", e.Key))
			}
			seen[e.Key] = struct{}{}
		}
	}
	return prev, next
}

// Len returns the number of committed entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// At returns the entry at index i. The caller guarantees bounds.
func (b *Buffer) At(i int) Entry {
	return b.entries[i]
}

// Entries returns the committed snapshot. Callers must not mutate it.
func (b *Buffer) Entries() []Entry {
	return b.entries
}

// Reset clears the buffer, starting a new generation.
func (b *Buffer) Reset() {
	b.entries = nil
}
