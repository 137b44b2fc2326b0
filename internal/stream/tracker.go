package stream

// DefaultBottomTolerance is how close (in layout units, i.e. terminal rows
// for the TUI host) the scroll offset must be to the maximum scrollable
// position to still count as "at bottom".
const DefaultBottomTolerance = 50

// Classification is the result of classifying a scroll position.
type Classification struct {
	AtBottom bool
}

// Tracker classifies raw scroll notifications. It is cheap and synchronous;
// the host's scroll events are already throttled, so no debouncing here.
type Tracker struct {
	tolerance int

	last Classification
}

// NewTracker returns a tracker with the given bottom tolerance.
// A tolerance <= 0 selects DefaultBottomTolerance.
func NewTracker(tolerance int) *Tracker {
	if tolerance <= 0 {
		tolerance = DefaultBottomTolerance
	}
	return &Tracker{
		tolerance: tolerance,
		last:      Classification{AtBottom: true},
	}
}

// OnScroll classifies a scroll notification and records it as the current
// position. scrollTop is the offset of the first visible unit, scrollHeight
// the total scrollable extent, clientHeight the viewport size.
func (t *Tracker) OnScroll(scrollTop, scrollHeight, clientHeight int) Classification {
	c := Classification{
		AtBottom: scrollHeight-scrollTop-clientHeight < t.tolerance,
	}
	t.last = c
	return c
}

// AtBottom reports the most recent classification. An empty, never-scrolled
// viewport counts as at bottom.
func (t *Tracker) AtBottom() bool {
	return t.last.AtBottom
}

// Reset restores the initial state (at bottom).
func (t *Tracker) Reset() {
	t.last = Classification{AtBottom: true}
}
