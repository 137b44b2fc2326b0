package ui

import (
	"github.com/asheshgoplani/taildeck/internal/stream"
)

// ViewportAdapter maps a flat list of entries onto a window of terminal
// lines. Entries start with an estimated height of one line; RenderLines
// (or an explicit Remeasure) replaces the estimate once an entry has been
// laid out. Offsets are kept as a prefix-sum over heights and rebuilt
// lazily after any height change.
//
// It implements stream.Viewport. Motion is advisory: a terminal has no
// smooth scrolling, so MotionSmooth lands the same as MotionInstant.
type ViewportAdapter struct {
	heights []int // rendered line count per entry
	offsets []int // offsets[i] = first line of entry i; len = len(heights)+1
	dirty   bool  // offsets need a rebuild

	yOffset int // first visible line
	width   int
	height  int // client height in lines
}

// NewViewportAdapter returns an adapter with no entries and zero size.
func NewViewportAdapter() *ViewportAdapter {
	return &ViewportAdapter{offsets: []int{0}}
}

// SetSize updates the window dimensions and re-clamps the scroll offset.
func (v *ViewportAdapter) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clamp()
}

// Width returns the window width in cells.
func (v *ViewportAdapter) Width() int { return v.width }

// Height returns the client height in lines.
func (v *ViewportAdapter) Height() int { return v.height }

// SetCount resizes the entry list to n entries. New entries get the
// one-line estimate; surviving measurements are kept.
func (v *ViewportAdapter) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(v.heights):
		v.heights = v.heights[:n]
	case n > len(v.heights):
		for i := len(v.heights); i < n; i++ {
			v.heights = append(v.heights, 1)
		}
	}
	v.dirty = true
	v.clamp()
}

// Count returns the number of entries.
func (v *ViewportAdapter) Count() int { return len(v.heights) }

// Remeasure implements stream.Viewport. The prefix sum is not rebuilt
// here; a run of remeasures costs one rebuild at the next read.
func (v *ViewportAdapter) Remeasure(index, size int) {
	if index < 0 || index >= len(v.heights) {
		return
	}
	if size < 1 {
		size = 1
	}
	if v.heights[index] == size {
		return
	}
	v.heights[index] = size
	v.dirty = true
}

// TotalExtent implements stream.Viewport. The extent is the total number
// of rendered lines.
func (v *ViewportAdapter) TotalExtent() int {
	v.rebuild()
	return v.offsets[len(v.offsets)-1]
}

// VisibleRange implements stream.Viewport. With no entries it reports
// (0, -1).
func (v *ViewportAdapter) VisibleRange() (start, end int) {
	v.rebuild()
	n := len(v.heights)
	if n == 0 || v.height <= 0 {
		return 0, -1
	}
	start = v.indexAtLine(v.yOffset)
	end = v.indexAtLine(v.yOffset + v.height - 1)
	return start, end
}

// ScrollToIndex implements stream.Viewport.
func (v *ViewportAdapter) ScrollToIndex(index int, align stream.Align, _ stream.Motion) {
	v.rebuild()
	if index < 0 || index >= len(v.heights) {
		return
	}
	off := v.offsets[index]
	h := v.heights[index]
	switch align {
	case stream.AlignEnd:
		v.yOffset = off + h - v.height
	case stream.AlignCenter:
		v.yOffset = off - (v.height-h)/2
	default:
		v.yOffset = off
	}
	v.clamp()
}

// ScrollState reports the values the scroll tracker classifies:
// top offset, total extent, and client height, all in lines.
func (v *ViewportAdapter) ScrollState() (scrollTop, scrollHeight, clientHeight int) {
	return v.yOffset, v.TotalExtent(), v.height
}

// YOffset returns the first visible line.
func (v *ViewportAdapter) YOffset() int { return v.yOffset }

// LineDown scrolls down by n lines.
func (v *ViewportAdapter) LineDown(n int) {
	v.yOffset += n
	v.clamp()
}

// LineUp scrolls up by n lines.
func (v *ViewportAdapter) LineUp(n int) {
	v.yOffset -= n
	v.clamp()
}

// HalfPageDown scrolls down by half the client height.
func (v *ViewportAdapter) HalfPageDown() { v.LineDown(v.height / 2) }

// HalfPageUp scrolls up by half the client height.
func (v *ViewportAdapter) HalfPageUp() { v.LineUp(v.height / 2) }

// PageDown scrolls down by one client height.
func (v *ViewportAdapter) PageDown() { v.LineDown(v.height) }

// PageUp scrolls up by one client height.
func (v *ViewportAdapter) PageUp() { v.LineUp(v.height) }

// GotoTop jumps to the first line.
func (v *ViewportAdapter) GotoTop() {
	v.yOffset = 0
}

// GotoBottom jumps so the last line is the bottom of the window.
func (v *ViewportAdapter) GotoBottom() {
	v.yOffset = v.TotalExtent() - v.height
	v.clamp()
}

// AtBottom reports whether the window shows the final line.
func (v *ViewportAdapter) AtBottom() bool {
	return v.yOffset >= v.TotalExtent()-v.height
}

// VisibleLines returns the window [yOffset, yOffset+height) over the given
// rendered lines, padded with empty strings when content is short.
func (v *ViewportAdapter) VisibleLines(lines []string) []string {
	out := make([]string, 0, v.height)
	for i := v.yOffset; i < v.yOffset+v.height; i++ {
		if i >= 0 && i < len(lines) {
			out = append(out, lines[i])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// indexAtLine returns the entry covering the given line, clamped to the
// entry range. Callers must hold a rebuilt prefix sum.
func (v *ViewportAdapter) indexAtLine(line int) int {
	n := len(v.heights)
	if line < 0 {
		return 0
	}
	// Binary search over the prefix sum: last i with offsets[i] <= line.
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if v.offsets[mid] <= line {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (v *ViewportAdapter) rebuild() {
	if !v.dirty {
		return
	}
	if cap(v.offsets) < len(v.heights)+1 {
		v.offsets = make([]int, len(v.heights)+1)
	} else {
		v.offsets = v.offsets[:len(v.heights)+1]
	}
	v.offsets[0] = 0
	for i, h := range v.heights {
		v.offsets[i+1] = v.offsets[i] + h
	}
	v.dirty = false
	v.clampOffset()
}

func (v *ViewportAdapter) clamp() {
	v.rebuild()
	v.clampOffset()
}

// clampOffset bounds yOffset against the current prefix sum. Callers
// must hold a rebuilt prefix sum.
func (v *ViewportAdapter) clampOffset() {
	max := v.offsets[len(v.offsets)-1] - v.height
	if v.yOffset > max {
		v.yOffset = max
	}
	if v.yOffset < 0 {
		v.yOffset = 0
	}
}
