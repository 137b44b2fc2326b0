package source

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

// taggedLine is one line read from the child, tagged with its channel.
type taggedLine struct {
	kind stream.Kind
	text string
}

// CommandRun executes a command under a pty and streams its output. The pty
// keeps the child line-buffered and colorful the way it would be on a real
// terminal; stderr stays on a separate pipe so diagnostics render distinctly.
type CommandRun struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// NewCommandRun starts name with args and begins streaming.
func NewCommandRun(name string, args ...string) (*CommandRun, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, name, args...)

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("source: stderr pipe: %w", err)
	}
	cmd.Stderr = stderrW

	ptmx, err := pty.Start(cmd)
	if err != nil {
		cancel()
		stderrR.Close()
		stderrW.Close()
		return nil, fmt.Errorf("source: start %s: %w", name, err)
	}
	// Parent keeps the read end; the child owns the write end now.
	stderrW.Close()

	cr := &CommandRun{
		cmd:    cmd,
		ptmx:   ptmx,
		events: make(chan Event, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	go cr.run(stderrR)
	return cr, nil
}

// Events implements Source.
func (cr *CommandRun) Events() <-chan Event {
	return cr.events
}

// Close stops the child and the readers. Idempotent.
func (cr *CommandRun) Close() error {
	cr.closeOnce.Do(func() {
		cr.cancel()
		cr.ptmx.Close()
	})
	return nil
}

func (cr *CommandRun) run(stderrR *os.File) {
	defer close(cr.events)

	lines := make(chan taggedLine, 64)

	var g errgroup.Group
	g.Go(func() error {
		defer stderrR.Close()
		return cr.scan(stderrR, stream.KindStderr, lines)
	})
	g.Go(func() error {
		// The pty returns EIO when the child exits; that is EOF here.
		_ = cr.scan(cr.ptmx, stream.KindStdout, lines)
		return nil
	})
	go func() {
		_ = g.Wait()
		close(lines)
	}()

	var entries []stream.Entry
	for line := range lines {
		entries = append(entries, stream.Entry{
			Key:           fmt.Sprintf("P%d", len(entries)),
			Kind:          line.kind,
			Text:          line.text,
			OriginalIndex: len(entries),
		})
		appendKind := stream.AppendRunning
		if len(entries) == 1 {
			appendKind = stream.AppendInitial
		}
		cr.send(Event{Update: stream.Update{
			Entries: snapshot(entries),
			Append:  appendKind,
		}})
	}

	err := cr.cmd.Wait()
	exit := "process exited"
	if err != nil {
		exit = fmt.Sprintf("process exited: %v", err)
	}
	srcLog.Info("command_done",
		slog.String("command", cr.cmd.Path),
		slog.Int("lines", len(entries)),
	)

	entries = append(entries, stream.Entry{
		Key:           fmt.Sprintf("P%d", len(entries)),
		Kind:          stream.KindStderr,
		Text:          exit,
		OriginalIndex: len(entries),
	})
	cr.send(Event{Update: stream.Update{
		Entries: snapshot(entries),
		Append:  stream.AppendOther,
	}})
}

func (cr *CommandRun) scan(f *os.File, kind stream.Kind, lines chan<- taggedLine) error {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		// The pty line discipline turns \n into \r\n.
		text := strings.TrimRight(sc.Text(), "\r")
		select {
		case lines <- taggedLine{kind: kind, text: text}:
		case <-cr.ctx.Done():
			return cr.ctx.Err()
		}
	}
	return sc.Err()
}

func (cr *CommandRun) send(e Event) {
	select {
	case cr.events <- e:
	case <-cr.ctx.Done():
	}
}
