package stream

import (
	"log/slog"
	"time"

	"github.com/asheshgoplani/taildeck/internal/logging"
)

var ctrlLog = logging.ForComponent(logging.CompStream)

// Options tune the renderer. Zero values select the documented defaults,
// except QuietWindow where zero means direct-commit (no batching) and a
// negative value selects DefaultQuietWindow.
type Options struct {
	QuietWindow     time.Duration
	BurstThreshold  int
	BottomTolerance int
}

// scrollCmd is a queued scroll command.
type scrollCmd struct {
	index  int
	align  Align
	motion Motion
}

// Controller owns the renderer state and drives the viewport. All methods
// except Schedule must be called from the host's UI goroutine; coalesced
// updates are handed back through CommitCh so the host applies them there.
//
// Construction wires buffer, batcher, tracker, policy and navigator
// together; the host supplies a Viewport (possibly later, possibly never:
// with no viewport every scroll command is a no-op).
type Controller struct {
	buf     *Buffer
	batcher *Batcher
	tracker *Tracker
	policy  *Policy
	nav     *Navigator

	vp Viewport

	commitCh chan Update

	// deferred is the scroll command postponed to the next layout pass so
	// the viewport can remeasure just-committed content first.
	deferred *scrollCmd

	// err, once set, replaces the list and suspends autoscroll.
	err error
}

// NewController creates a controller. vp may be nil and set later with
// SetViewport.
func NewController(vp Viewport, opts Options) *Controller {
	c := &Controller{
		buf:      NewBuffer(),
		tracker:  NewTracker(opts.BottomTolerance),
		policy:   NewPolicy(opts.BurstThreshold),
		nav:      NewNavigator(),
		vp:       vp,
		commitCh: make(chan Update, 1),
	}
	c.batcher = NewBatcher(opts.QuietWindow, c.deliver)
	return c
}

// deliver hands a coalesced update to the host, last-wins: an unconsumed
// older commit is replaced rather than queued behind.
func (c *Controller) deliver(u Update) {
	for {
		select {
		case c.commitCh <- u:
			return
		default:
			select {
			case <-c.commitCh:
			default:
			}
		}
	}
}

// Schedule feeds a raw update into the batcher. Safe to call from source
// goroutines.
func (c *Controller) Schedule(u Update) {
	c.batcher.Schedule(u)
}

// CommitCh delivers coalesced updates ready to be applied. The host receives
// from it on the UI goroutine and calls Apply.
func (c *Controller) CommitCh() <-chan Update {
	return c.commitCh
}

// Apply commits an update and executes the anchor decision. The decision is
// computed once, before the commit, from the pre-commit scroll and length
// state. It returns the decision for the host's benefit (tests, status bar).
func (c *Controller) Apply(u Update) Decision {
	atBottom := c.tracker.AtBottom()

	prev, next := c.buf.Commit(u)

	if c.err != nil {
		// Terminal error state: the list is replaced, autoscroll is
		// suspended until Reset.
		return Decision{Anchor: AnchorNone}
	}

	d := c.policy.Decide(PolicyInput{
		Append:     u.Append,
		Loading:    u.Loading,
		AtBottom:   atBottom,
		PrevLength: prev,
		NewLength:  next,
	})

	ctrlLog.Debug("anchor_decision",
		slog.String("anchor", d.Anchor.String()),
		slog.String("append", u.Append.String()),
		slog.Bool("at_bottom", atBottom),
		slog.Int("prev_len", prev),
		slog.Int("new_len", next),
	)

	switch d.Anchor {
	case AnchorBottom:
		cmd := scrollCmd{index: next - 1, align: AlignEnd, motion: d.Motion}
		if d.Deferred {
			c.deferred = &cmd
		} else {
			c.issue(cmd)
		}
	case AnchorLastBlock:
		// The new block starts at the first appended entry.
		c.issue(scrollCmd{index: prev, align: AlignStart, motion: d.Motion})
	}
	return d
}

// issue sends a scroll command to the viewport, if one is attached.
func (c *Controller) issue(cmd scrollCmd) {
	if c.vp == nil {
		return
	}
	c.vp.ScrollToIndex(cmd.index, cmd.align, cmd.motion)
}

// FlushDeferred issues the postponed scroll command, if any. The host calls
// this on the layout pass after a commit, once the viewport has remeasured.
// Safe to call when the viewport has since gone away.
func (c *Controller) FlushDeferred() {
	if c.deferred == nil {
		return
	}
	cmd := *c.deferred
	c.deferred = nil
	// Re-target the bottom: the buffer may have grown again since the
	// command was queued.
	if cmd.align == AlignEnd && c.buf.Len() > 0 {
		cmd.index = c.buf.Len() - 1
	}
	c.issue(cmd)
}

// OnScroll feeds a raw scroll notification into the tracker.
func (c *Controller) OnScroll(scrollTop, scrollHeight, clientHeight int) Classification {
	cl := c.tracker.OnScroll(scrollTop, scrollHeight, clientHeight)
	logging.Aggregate(logging.CompStream, "scroll_classified", slog.Bool("at_bottom", cl.AtBottom))
	return cl
}

// OnMatchPointerChange navigates to the current match when the pointer
// changed. Explicit navigation always wins over ambient autoscroll for that
// one command, so any deferred bottom pin is dropped.
func (c *Controller) OnMatchPointerChange(matches []int, pointer int) {
	c.deferred = nil
	c.nav.OnMatchPointerChange(c.vp, matches, pointer)
}

// ScrollToIndex is the imperative command surface, bypassing the policy.
func (c *Controller) ScrollToIndex(index int, align Align, motion Motion) {
	if index < 0 || index >= c.buf.Len() {
		return
	}
	c.deferred = nil
	c.issue(scrollCmd{index: index, align: align, motion: motion})
}

// ScrollToBottom pins the viewport to the latest entry, bypassing the
// policy. Host code wires this to a "jump to bottom" key.
func (c *Controller) ScrollToBottom(motion Motion) {
	if c.buf.Len() == 0 {
		return
	}
	c.deferred = nil
	c.issue(scrollCmd{index: c.buf.Len() - 1, align: AlignEnd, motion: motion})
}

// SetViewport attaches (or detaches, with nil) the viewport handle.
func (c *Controller) SetViewport(vp Viewport) {
	c.vp = vp
}

// SetError puts the renderer into the terminal error state: the buffer is
// no longer shown and autoscroll is suspended. Reset clears it.
func (c *Controller) SetError(err error) {
	c.err = err
}

// Err returns the terminal error, if any.
func (c *Controller) Err() error {
	return c.err
}

// Buffer exposes the committed entries for rendering.
func (c *Controller) Buffer() *Buffer {
	return c.buf
}

// Reset clears the buffer and every derived ref: pending debounce, deferred
// scroll, match pointer, error. A timer in flight delivers nothing.
func (c *Controller) Reset() {
	c.batcher.Reset()
	c.buf.Reset()
	c.tracker.Reset()
	c.nav.Reset()
	c.deferred = nil
	c.err = nil
	// Drain a commit that was delivered but not yet applied.
	select {
	case <-c.commitCh:
	default:
	}
}

// Close tears the controller down. Pending work is discarded; Schedule
// becomes a no-op.
func (c *Controller) Close() {
	c.batcher.Stop()
	c.deferred = nil
}
