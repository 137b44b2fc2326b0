package stream

import (
	"sync"
	"time"
)

// DefaultQuietWindow is the debounce interval after which a pending update
// is committed if no newer update supersedes it.
const DefaultQuietWindow = 100 * time.Millisecond

// Batcher coalesces rapid successive updates into a single commit after a
// quiet period. At most one update is pending; each Schedule replaces it and
// restarts the timer, so N updates inside the window collapse into one fire
// carrying only the newest snapshot.
//
// With a zero quiet window the batcher degrades to direct-commit mode:
// Schedule invokes fire synchronously. Lower-volume surfaces use that.
type Batcher struct {
	quiet time.Duration
	fire  func(Update)

	mu      sync.Mutex
	pending *Update
	timer   *time.Timer
	stopped bool
}

// NewBatcher creates a batcher delivering coalesced updates to fire.
// quiet < 0 selects DefaultQuietWindow; quiet == 0 disables batching.
func NewBatcher(quiet time.Duration, fire func(Update)) *Batcher {
	if quiet < 0 {
		quiet = DefaultQuietWindow
	}
	return &Batcher{quiet: quiet, fire: fire}
}

// Schedule records u as the pending update and restarts the quiet-window
// timer. The previously pending update, if any, is discarded unfired.
func (b *Batcher) Schedule(u Update) {
	if b.quiet == 0 {
		b.mu.Lock()
		stopped := b.stopped
		b.mu.Unlock()
		if !stopped {
			b.fire(u)
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.pending = &u
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.flush)
}

// flush delivers the pending update, if the batcher has not been stopped and
// a newer Schedule has not restarted the timer since this fire was armed.
func (b *Batcher) flush() {
	b.mu.Lock()
	u := b.pending
	b.pending = nil
	stopped := b.stopped
	b.mu.Unlock()

	if u == nil || stopped {
		return
	}
	b.fire(*u)
}

// Stop cancels any pending timer and discards the pending update. After
// Stop, Schedule is a no-op; a timer that already fired delivers nothing.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Reset cancels pending work but leaves the batcher usable, starting a new
// generation. Used when the subject is reset rather than torn down.
func (b *Batcher) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
