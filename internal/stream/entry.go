// Package stream implements the incremental renderer core: a key-addressed
// entry buffer, update debouncing, scroll classification, the autoscroll
// anchor policy, and match-driven navigation. It contains no windowing math
// and no terminal code; the host supplies a Viewport implementation and
// feeds scroll notifications in.
package stream

// Kind tags the semantic type of an entry.
type Kind int

const (
	// KindStdout is raw process/file output.
	KindStdout Kind = iota
	// KindStderr is diagnostic output, rendered distinctly.
	KindStderr
	// KindEvent is a structured transcript event (parsed JSON).
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindEvent:
		return "event"
	}
	return "unknown"
}

// Entry is one addressable unit of stream content. Keys must be stable and
// unique for the lifetime of a buffer generation; reusing a key for different
// content causes misrendering (not a crash) and is logged by the buffer.
// Entries are never reordered.
type Entry struct {
	Key           string
	Kind          Kind
	Text          string
	Payload       any // parsed event body for KindEvent, nil otherwise
	OriginalIndex int // position at ingestion time
}

// AppendKind describes the semantic nature of a buffer update. It drives the
// anchor policy's choice of scroll target.
type AppendKind int

const (
	// AppendInitial is the first load of a subject.
	AppendInitial AppendKind = iota
	// AppendRunning is ongoing output from a live subject.
	AppendRunning
	// AppendPlan marks an update whose tail is a structural block (a plan);
	// the viewport shows the block's start rather than its end.
	AppendPlan
	// AppendOther is any other growth (exit notices, late stderr, etc).
	AppendOther
)

func (a AppendKind) String() string {
	switch a {
	case AppendInitial:
		return "initial"
	case AppendRunning:
		return "running"
	case AppendPlan:
		return "plan"
	case AppendOther:
		return "other"
	}
	return "unknown"
}

// Update is a full snapshot of the current entry sequence, not a delta.
// The renderer diffs lengths itself to infer growth.
type Update struct {
	Entries []Entry
	Append  AppendKind
	// Loading is true while the subject's initial load is still in flight.
	Loading bool
}
