package ui

import (
	"testing"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

func TestViewportAdapterEmpty(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)

	if got := v.TotalExtent(); got != 0 {
		t.Errorf("TotalExtent = %d, want 0", got)
	}
	start, end := v.VisibleRange()
	if start != 0 || end != -1 {
		t.Errorf("VisibleRange = (%d, %d), want (0, -1)", start, end)
	}
	if !v.AtBottom() {
		t.Error("empty viewport should count as at bottom")
	}
}

func TestViewportAdapterExtentWithEstimates(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(25)

	if got := v.TotalExtent(); got != 25 {
		t.Errorf("TotalExtent = %d, want 25 (one line per entry)", got)
	}

	v.Remeasure(3, 4)
	if got := v.TotalExtent(); got != 28 {
		t.Errorf("TotalExtent after remeasure = %d, want 28", got)
	}
}

func TestViewportAdapterVisibleRange(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(100)

	start, end := v.VisibleRange()
	if start != 0 || end != 9 {
		t.Errorf("VisibleRange at top = (%d, %d), want (0, 9)", start, end)
	}

	v.LineDown(30)
	start, end = v.VisibleRange()
	if start != 30 || end != 39 {
		t.Errorf("VisibleRange after scroll = (%d, %d), want (30, 39)", start, end)
	}

	// A tall entry covers several lines; the range is entry indices
	v.Remeasure(30, 5)
	start, end = v.VisibleRange()
	if start != 30 || end != 35 {
		t.Errorf("VisibleRange with tall entry = (%d, %d), want (30, 35)", start, end)
	}
}

func TestViewportAdapterScrollToIndex(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(100)

	v.ScrollToIndex(50, stream.AlignStart, stream.MotionInstant)
	if got := v.YOffset(); got != 50 {
		t.Errorf("AlignStart YOffset = %d, want 50", got)
	}

	v.ScrollToIndex(50, stream.AlignEnd, stream.MotionInstant)
	if got := v.YOffset(); got != 41 {
		t.Errorf("AlignEnd YOffset = %d, want 41", got)
	}

	v.ScrollToIndex(50, stream.AlignCenter, stream.MotionInstant)
	if got := v.YOffset(); got != 46 {
		t.Errorf("AlignCenter YOffset = %d, want 46", got)
	}

	// Out of range commands are dropped
	before := v.YOffset()
	v.ScrollToIndex(500, stream.AlignStart, stream.MotionInstant)
	if got := v.YOffset(); got != before {
		t.Errorf("out of range scroll moved the viewport to %d", got)
	}
}

func TestViewportAdapterScrollToLastAlignEnd(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(100)

	v.ScrollToIndex(99, stream.AlignEnd, stream.MotionInstant)
	if !v.AtBottom() {
		t.Error("pinning the last entry AlignEnd should land at the bottom")
	}
	if got := v.YOffset(); got != 90 {
		t.Errorf("YOffset = %d, want 90", got)
	}
}

func TestViewportAdapterClamping(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(5)

	// Content shorter than the window never scrolls
	v.LineDown(100)
	if got := v.YOffset(); got != 0 {
		t.Errorf("YOffset = %d, want 0 when content fits", got)
	}
	if !v.AtBottom() {
		t.Error("short content should count as at bottom")
	}

	v.SetCount(100)
	v.LineDown(1000)
	if got := v.YOffset(); got != 90 {
		t.Errorf("YOffset = %d, want 90 after over-scroll", got)
	}
	v.LineUp(1000)
	if got := v.YOffset(); got != 0 {
		t.Errorf("YOffset = %d, want 0 after over-scroll up", got)
	}
}

func TestViewportAdapterShrinkKeepsOffsetValid(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(100)
	v.GotoBottom()

	v.SetCount(20)
	if got := v.YOffset(); got != 10 {
		t.Errorf("YOffset = %d, want 10 after shrink to 20 entries", got)
	}
}

func TestViewportAdapterBatchedRemeasure(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(50)

	// A whole commit's worth of remeasures before any read
	for i := 0; i < 50; i++ {
		v.Remeasure(i, 3)
	}
	if got := v.TotalExtent(); got != 150 {
		t.Errorf("TotalExtent = %d, want 150 after batched remeasure", got)
	}

	// Shrinking heights re-clamps the offset at the next read
	v.GotoBottom()
	for i := 0; i < 50; i++ {
		v.Remeasure(i, 1)
	}
	start, end := v.VisibleRange()
	if start != 40 || end != 49 {
		t.Errorf("VisibleRange after shrink = (%d, %d), want (40, 49)", start, end)
	}
	if got := v.YOffset(); got != 40 {
		t.Errorf("YOffset = %d, want 40 after shrink re-clamp", got)
	}
}

func TestViewportAdapterScrollState(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 10)
	v.SetCount(40)
	v.LineDown(7)

	top, total, client := v.ScrollState()
	if top != 7 || total != 40 || client != 10 {
		t.Errorf("ScrollState = (%d, %d, %d), want (7, 40, 10)", top, total, client)
	}
}

func TestViewportAdapterVisibleLines(t *testing.T) {
	v := NewViewportAdapter()
	v.SetSize(80, 3)
	v.SetCount(5)
	lines := []string{"a", "b", "c", "d", "e"}

	got := v.VisibleLines(lines)
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("VisibleLines at top = %v", got)
	}

	v.GotoBottom()
	got = v.VisibleLines(lines)
	if got[0] != "c" || got[2] != "e" {
		t.Errorf("VisibleLines at bottom = %v", got)
	}
}
