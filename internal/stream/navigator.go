package stream

// NoMatch is the sentinel for "no current match".
const NoMatch = -1

// Navigator scrolls to externally supplied match positions. It does not
// compute matches; the search provider hands it an ascending list of entry
// indices and a pointer into that list. Navigation fires only when the
// pointer changes, never merely because the list changed.
type Navigator struct {
	lastPointer int
}

// NewNavigator returns a navigator with no previously observed pointer.
func NewNavigator() *Navigator {
	return &Navigator{lastPointer: NoMatch}
}

// OnMatchPointerChange issues one centered scroll command when pointer
// differs from its previously observed value and indexes into matches.
// Out-of-bounds pointers and empty lists are ignored silently; they mean
// "no navigation due", not a fault.
func (n *Navigator) OnMatchPointerChange(vp Viewport, matches []int, pointer int) {
	if pointer == n.lastPointer {
		return
	}
	n.lastPointer = pointer

	if vp == nil || pointer < 0 || pointer >= len(matches) {
		return
	}
	vp.ScrollToIndex(matches[pointer], AlignCenter, MotionSmooth)
}

// Reset forgets the observed pointer, so the next non-sentinel pointer
// navigates again. Called when the subject or the query changes.
func (n *Navigator) Reset() {
	n.lastPointer = NoMatch
}
