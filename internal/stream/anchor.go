package stream

// Anchor is the scroll target a commit should move the viewport to, if any.
type Anchor int

const (
	// AnchorNone leaves the reading position alone.
	AnchorNone Anchor = iota
	// AnchorBottom pins the viewport to the latest entry.
	AnchorBottom
	// AnchorLastBlock snaps to the start of the block appended by this
	// commit (the first new entry).
	AnchorLastBlock
)

func (a Anchor) String() string {
	switch a {
	case AnchorBottom:
		return "bottom"
	case AnchorLastBlock:
		return "last_block"
	}
	return "none"
}

// Motion selects how a scroll command moves.
type Motion int

const (
	// MotionInstant jumps without animation.
	MotionInstant Motion = iota
	// MotionSmooth animates the scroll.
	MotionSmooth
)

// DefaultBurstThreshold is the growth (entries per commit) at or above which
// an update counts as a burst.
const DefaultBurstThreshold = 10

// Decision is the anchor policy's output for one commit, computed exactly
// once per commit from pre-commit state.
type Decision struct {
	Anchor Anchor
	Motion Motion
	// Deferred requests that the scroll command be issued on the next
	// layout pass, after the viewport has remeasured the new content.
	Deferred bool
}

// PolicyInput is the pre-commit state the anchor policy decides from.
type PolicyInput struct {
	Append     AppendKind
	Loading    bool
	AtBottom   bool
	PrevLength int
	NewLength  int
}

// Policy decides, per committed update, whether and how to move the
// viewport. It is stateless; the decision is recomputed fresh each cycle.
type Policy struct {
	burstThreshold int
}

// NewPolicy returns a policy with the given burst threshold.
// A threshold <= 0 selects DefaultBurstThreshold.
func NewPolicy(burstThreshold int) *Policy {
	if burstThreshold <= 0 {
		burstThreshold = DefaultBurstThreshold
	}
	return &Policy{burstThreshold: burstThreshold}
}

// Decide applies the decision table, first matching rule wins:
//
//  1. first ever population -> bottom, instant
//  2. plan block after load -> top of the new block
//  3. burst while pinned -> bottom, smooth, deferred one layout pass
//     (the viewport's extent is stale until the burst is remeasured;
//     scrolling synchronously would land short of the real bottom)
//  4. live growth while pinned -> bottom, smooth
//  5. otherwise -> none; a scrolled-up reader is never yanked
//
// The burst rule is checked before the live-growth rule so a large commit
// always gets the deferred scroll, whatever its append kind.
// Shrinkage or zero growth never moves the viewport.
func (p *Policy) Decide(in PolicyInput) Decision {
	if in.NewLength <= in.PrevLength {
		return Decision{Anchor: AnchorNone}
	}

	if in.PrevLength == 0 && in.NewLength > 0 {
		return Decision{Anchor: AnchorBottom, Motion: MotionInstant}
	}

	if in.Append == AppendPlan && !in.Loading {
		return Decision{Anchor: AnchorLastBlock, Motion: MotionSmooth}
	}

	if in.NewLength-in.PrevLength >= p.burstThreshold && in.AtBottom {
		return Decision{Anchor: AnchorBottom, Motion: MotionSmooth, Deferred: true}
	}

	if (in.Append == AppendRunning || in.Append == AppendOther) && !in.Loading && in.AtBottom {
		return Decision{Anchor: AnchorBottom, Motion: MotionSmooth}
	}

	return Decision{Anchor: AnchorNone}
}
