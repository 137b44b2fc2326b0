package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

func TestTranscriptLineParsesEvents(t *testing.T) {
	e := transcriptLine(`{"type":"message","role":"assistant","content":"hello\nworld"}`, 0)

	assert.Equal(t, "E0", e.Key)
	assert.Equal(t, stream.KindEvent, e.Kind)
	assert.Equal(t, "assistant: hello", e.Text)

	ev, ok := e.Payload.(transcriptEvent)
	require.True(t, ok)
	assert.Equal(t, "message", ev.Type)
}

func TestTranscriptLineToolUse(t *testing.T) {
	e := transcriptLine(`{"type":"tool_use","name":"grep"}`, 3)
	assert.Equal(t, "tool: grep", e.Text)
	assert.Equal(t, 3, e.OriginalIndex)
}

func TestTranscriptLineMalformedDegradesToRaw(t *testing.T) {
	e := transcriptLine("not json at all", 1)

	assert.Equal(t, stream.KindStdout, e.Kind)
	assert.Equal(t, "not json at all", e.Text)
	assert.Nil(t, e.Payload)
}

func TestClassifyTranscriptPlanBlock(t *testing.T) {
	plan := transcriptLine(`{"type":"plan","content":"1. do the thing"}`, 5)
	msg := transcriptLine(`{"type":"message","content":"ok"}`, 6)

	assert.Equal(t, stream.AppendPlan, classifyTranscript([]stream.Entry{msg, plan}, false))
	assert.Equal(t, stream.AppendRunning, classifyTranscript([]stream.Entry{msg}, false))
	assert.Equal(t, stream.AppendInitial, classifyTranscript([]stream.Entry{plan}, true),
		"the initial load is never a plan block")
}

func TestTranscriptTailEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"message","role":"user","content":"hi"}`+"\n"), 0o644))

	tt, err := NewTranscriptTail(path)
	require.NoError(t, err)
	defer tt.Close()

	u := nextUpdate(t, tt, 2*time.Second)
	require.Len(t, u.Entries, 1)
	assert.Equal(t, stream.AppendInitial, u.Append)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"plan","content":"step 1"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	u = nextUpdate(t, tt, 2*time.Second)
	require.Len(t, u.Entries, 2)
	assert.Equal(t, stream.AppendPlan, u.Append)
	assert.Equal(t, "plan: step 1", u.Entries[1].Text)
}
