package stream

import (
	"fmt"
	"testing"
)

func entries(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{Key: fmt.Sprintf("L%d", i), Kind: KindStdout, Text: "line", OriginalIndex: i}
	}
	return out
}

func TestDecideInitialPopulation(t *testing.T) {
	p := NewPolicy(0)

	// Any non-empty first update pins to bottom instantly, whatever the
	// append kind or at-bottom state.
	for _, kind := range []AppendKind{AppendInitial, AppendRunning, AppendPlan, AppendOther} {
		for _, atBottom := range []bool{true, false} {
			d := p.Decide(PolicyInput{
				Append:     kind,
				AtBottom:   atBottom,
				PrevLength: 0,
				NewLength:  3,
			})
			if d.Anchor != AnchorBottom {
				t.Errorf("kind=%v atBottom=%v: anchor = %v, want bottom", kind, atBottom, d.Anchor)
			}
			if d.Motion != MotionInstant {
				t.Errorf("kind=%v: initial population must be instant, got %v", kind, d.Motion)
			}
			if d.Deferred {
				t.Errorf("kind=%v: initial population must not be deferred", kind)
			}
		}
	}
}

func TestDecidePlanAnchorsToBlockStart(t *testing.T) {
	p := NewPolicy(0)

	// Plan blocks show their start, irrespective of at-bottom.
	for _, atBottom := range []bool{true, false} {
		d := p.Decide(PolicyInput{
			Append:     AppendPlan,
			AtBottom:   atBottom,
			PrevLength: 4,
			NewLength:  6,
		})
		if d.Anchor != AnchorLastBlock {
			t.Errorf("atBottom=%v: anchor = %v, want last_block", atBottom, d.Anchor)
		}
	}

	// But not while the initial load is still in flight.
	d := p.Decide(PolicyInput{
		Append:     AppendPlan,
		Loading:    true,
		AtBottom:   true,
		PrevLength: 4,
		NewLength:  6,
	})
	if d.Anchor != AnchorNone {
		t.Errorf("loading plan: anchor = %v, want none", d.Anchor)
	}
}

func TestDecideRunningGrowthWhilePinned(t *testing.T) {
	p := NewPolicy(0)

	d := p.Decide(PolicyInput{
		Append:     AppendRunning,
		AtBottom:   true,
		PrevLength: 5,
		NewLength:  7,
	})
	if d.Anchor != AnchorBottom || d.Motion != MotionSmooth || d.Deferred {
		t.Errorf("small running growth at bottom: got %+v, want smooth non-deferred bottom", d)
	}
}

func TestDecideBurstDefersScroll(t *testing.T) {
	p := NewPolicy(0)

	// grewBy = 15 >= 10: the scroll waits one layout pass for remeasure.
	d := p.Decide(PolicyInput{
		Append:     AppendRunning,
		AtBottom:   true,
		PrevLength: 5,
		NewLength:  20,
	})
	if d.Anchor != AnchorBottom {
		t.Fatalf("burst: anchor = %v, want bottom", d.Anchor)
	}
	if !d.Deferred {
		t.Error("burst commits must defer the scroll to the next layout pass")
	}
	if d.Motion != MotionSmooth {
		t.Errorf("burst: motion = %v, want smooth", d.Motion)
	}
}

func TestDecideNonBottomSuppression(t *testing.T) {
	p := NewPolicy(0)

	// Growth never pulls a scrolled-up reader back down.
	for _, kind := range []AppendKind{AppendRunning, AppendOther} {
		d := p.Decide(PolicyInput{
			Append:     kind,
			AtBottom:   false,
			PrevLength: 5,
			NewLength:  50,
		})
		if d.Anchor != AnchorNone {
			t.Errorf("kind=%v scrolled up: anchor = %v, want none", kind, d.Anchor)
		}
	}
}

func TestDecideNoGrowthNoMovement(t *testing.T) {
	p := NewPolicy(0)

	for _, tc := range []struct{ prev, next int }{
		{5, 5}, // no growth
		{5, 2}, // shrink (reset in flight)
		{0, 0}, // empty
	} {
		d := p.Decide(PolicyInput{
			Append:     AppendRunning,
			AtBottom:   true,
			PrevLength: tc.prev,
			NewLength:  tc.next,
		})
		if d.Anchor != AnchorNone {
			t.Errorf("prev=%d next=%d: anchor = %v, want none", tc.prev, tc.next, d.Anchor)
		}
	}
}

func TestDecideCustomBurstThreshold(t *testing.T) {
	p := NewPolicy(3)

	d := p.Decide(PolicyInput{
		Append:     AppendInitial,
		AtBottom:   true,
		PrevLength: 10,
		NewLength:  13,
	})
	if d.Anchor != AnchorBottom || !d.Deferred {
		t.Errorf("growth of 3 with threshold 3: got %+v, want deferred bottom", d)
	}
}
