package stream

// Align selects where a scrolled-to entry lands in the viewport.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Viewport is the windowing capability the renderer drives. The renderer
// never computes which rows are visible for an offset; it only issues
// commands against this contract and feeds scroll notifications it receives
// from the host into the Tracker.
//
// Implementations must accept ScrollToIndex for any in-range index and may
// treat Motion as advisory (a terminal host has no smooth scrolling; it may
// render MotionSmooth the same as MotionInstant).
type Viewport interface {
	// VisibleRange reports the inclusive index range of currently visible
	// entries.
	VisibleRange() (start, end int)

	// TotalExtent reports the total scrollable extent in layout units.
	TotalExtent() int

	// ScrollToIndex scrolls entry index into view with the given alignment.
	ScrollToIndex(index int, align Align, motion Motion)

	// Remeasure records the actual rendered size of an entry, replacing
	// the estimate used before it was ever laid out.
	Remeasure(index, size int)
}
