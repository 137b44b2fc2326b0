package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

// transcriptEvent is the subset of a JSONL transcript line the viewer cares
// about. Agent CLIs emit one JSON object per line; unknown fields pass
// through in the payload.
type transcriptEvent struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"`
}

// NewTranscriptTail follows a JSONL agent transcript. Each JSON line becomes
// a structured event entry; an appended plan event marks the whole update as
// a plan block so the viewer snaps to its start. Lines that fail to parse
// degrade to raw output entries rather than aborting the tail.
func NewTranscriptTail(path string) (*FileTail, error) {
	return newFileTail(path, transcriptLine, classifyTranscript)
}

func transcriptLine(line string, index int) stream.Entry {
	key := fmt.Sprintf("E%d", index)

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return stream.Entry{Key: key, Kind: stream.KindStdout, Text: "", OriginalIndex: index}
	}

	var ev transcriptEvent
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		// Not JSON; keep the raw text visible.
		return stream.Entry{Key: key, Kind: stream.KindStdout, Text: line, OriginalIndex: index}
	}

	return stream.Entry{
		Key:           key,
		Kind:          stream.KindEvent,
		Text:          transcriptText(ev),
		Payload:       ev,
		OriginalIndex: index,
	}
}

// transcriptText renders a one-line summary for an event.
func transcriptText(ev transcriptEvent) string {
	body := ev.Content
	if body == "" {
		body = ev.Text
	}
	switch {
	case ev.Type == "plan":
		return "plan: " + firstLine(body)
	case ev.Type == "tool_use":
		return "tool: " + ev.Name
	case ev.Role != "":
		return ev.Role + ": " + firstLine(body)
	case ev.Type != "":
		return ev.Type + ": " + firstLine(body)
	}
	return firstLine(body)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// classifyTranscript marks updates whose appended block contains a plan
// event, so the anchor policy shows the plan's start.
func classifyTranscript(added []stream.Entry, initial bool) stream.AppendKind {
	if initial {
		return stream.AppendInitial
	}
	for _, e := range added {
		if ev, ok := e.Payload.(transcriptEvent); ok && ev.Type == "plan" {
			return stream.AppendPlan
		}
	}
	return stream.AppendRunning
}
