package stream

import "testing"

// fakeViewport records scroll commands for assertions.
type fakeViewport struct {
	commands []scrollCmd
	extent   int
	start    int
	end      int
}

func (f *fakeViewport) VisibleRange() (int, int) { return f.start, f.end }
func (f *fakeViewport) TotalExtent() int         { return f.extent }
func (f *fakeViewport) Remeasure(int, int)       {}

func (f *fakeViewport) ScrollToIndex(index int, align Align, motion Motion) {
	f.commands = append(f.commands, scrollCmd{index: index, align: align, motion: motion})
}

func TestNavigatorFiresOnPointerChange(t *testing.T) {
	vp := &fakeViewport{}
	n := NewNavigator()
	matches := []int{3, 17, 42}

	n.OnMatchPointerChange(vp, matches, 1)

	if len(vp.commands) != 1 {
		t.Fatalf("expected 1 scroll command, got %d", len(vp.commands))
	}
	cmd := vp.commands[0]
	if cmd.index != 17 {
		t.Errorf("scrolled to %d, want 17", cmd.index)
	}
	if cmd.align != AlignCenter {
		t.Errorf("align = %v, want center", cmd.align)
	}
}

func TestNavigatorIdempotentForUnchangedPointer(t *testing.T) {
	vp := &fakeViewport{}
	n := NewNavigator()
	matches := []int{3, 17, 42}

	for i := 0; i < 5; i++ {
		n.OnMatchPointerChange(vp, matches, 2)
	}

	if len(vp.commands) != 1 {
		t.Errorf("repeated calls with an unchanged pointer issued %d commands, want 1", len(vp.commands))
	}
}

func TestNavigatorIgnoresListChanges(t *testing.T) {
	vp := &fakeViewport{}
	n := NewNavigator()

	n.OnMatchPointerChange(vp, []int{3, 17}, 0)
	// The match list grew but the pointer did not move: no navigation.
	n.OnMatchPointerChange(vp, []int{3, 17, 42, 99}, 0)

	if len(vp.commands) != 1 {
		t.Errorf("list-only change issued %d commands, want 1", len(vp.commands))
	}
}

func TestNavigatorMalformedPointer(t *testing.T) {
	vp := &fakeViewport{}
	n := NewNavigator()

	// Out of bounds, empty list, sentinel: all silently ignored.
	n.OnMatchPointerChange(vp, []int{3}, 5)
	n.OnMatchPointerChange(vp, nil, 0)
	n.OnMatchPointerChange(vp, []int{3}, NoMatch)

	if len(vp.commands) != 0 {
		t.Errorf("malformed pointers issued %d commands, want 0", len(vp.commands))
	}
}

func TestNavigatorNilViewport(t *testing.T) {
	n := NewNavigator()
	// Must not panic with no viewport attached.
	n.OnMatchPointerChange(nil, []int{1, 2}, 1)
}

func TestNavigatorReset(t *testing.T) {
	vp := &fakeViewport{}
	n := NewNavigator()
	matches := []int{5}

	n.OnMatchPointerChange(vp, matches, 0)
	n.Reset()
	n.OnMatchPointerChange(vp, matches, 0)

	if len(vp.commands) != 2 {
		t.Errorf("pointer re-observed after reset issued %d commands, want 2", len(vp.commands))
	}
}
