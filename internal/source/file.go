package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/asheshgoplani/taildeck/internal/stream"
)

// lineTransform turns one raw line into an entry. index is the entry's
// position at ingestion time.
type lineTransform func(line string, index int) stream.Entry

// appendClassifier picks the append kind for a grown snapshot, given the
// entries added by this read.
type appendClassifier func(added []stream.Entry, initial bool) stream.AppendKind

// FileTail follows a growing file and emits full-snapshot updates.
// fsnotify supplies change events; a token bucket caps how often bursts of
// writes trigger re-reads. Truncation starts a new generation.
type FileTail struct {
	path      string
	transform lineTransform
	classify  appendClassifier

	watcher *fsnotify.Watcher
	events  chan Event
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	// read state, touched only by the run goroutine
	entries []stream.Entry
	offset  int64
	partial string
}

// rawLine is the default transform for plain log files.
func rawLine(line string, index int) stream.Entry {
	return stream.Entry{
		Key:           fmt.Sprintf("L%d", index),
		Kind:          stream.KindStdout,
		Text:          line,
		OriginalIndex: index,
	}
}

func runningOrInitial(_ []stream.Entry, initial bool) stream.AppendKind {
	if initial {
		return stream.AppendInitial
	}
	return stream.AppendRunning
}

// NewFileTail starts following path. The initial contents are delivered as
// the first update.
func NewFileTail(path string) (*FileTail, error) {
	return newFileTail(path, rawLine, runningOrInitial)
}

func newFileTail(path string, transform lineTransform, classify appendClassifier) (*FileTail, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("source: fsnotify watcher: %w", err)
	}
	// Watch the directory: editors and log rotation replace the file,
	// which a file-level watch would lose.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("source: watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ft := &FileTail{
		path:      path,
		transform: transform,
		classify:  classify,
		watcher:   watcher,
		events:    make(chan Event, 16),
		limiter:   rate.NewLimiter(rate.Every(50*time.Millisecond), 5),
		ctx:       ctx,
		cancel:    cancel,
	}
	go ft.run()
	return ft, nil
}

// Events implements Source.
func (ft *FileTail) Events() <-chan Event {
	return ft.events
}

// Close implements Source.
func (ft *FileTail) Close() error {
	ft.closeOnce.Do(func() {
		ft.cancel()
		ft.watcher.Close()
	})
	return nil
}

func (ft *FileTail) run() {
	defer close(ft.events)

	if err := ft.readMore(true); err != nil {
		ft.send(Event{Err: err})
		return
	}

	for {
		select {
		case <-ft.ctx.Done():
			return

		case ev, ok := <-ft.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(ft.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := ft.limiter.Wait(ft.ctx); err != nil {
				return
			}
			if err := ft.readMore(false); err != nil {
				ft.send(Event{Err: err})
				return
			}

		case err, ok := <-ft.watcher.Errors:
			if !ok {
				return
			}
			srcLog.Warn("file_watch_error", slog.String("path", ft.path), slog.String("error", err.Error()))
		}
	}
}

// readMore reads bytes appended since the last read and emits a snapshot if
// anything new completed a line. A shrunken file means truncation: reset
// and re-read from the start.
func (ft *FileTail) readMore(initial bool) error {
	f, err := os.Open(ft.path)
	if err != nil {
		if os.IsNotExist(err) && !initial {
			// Rotated away; wait for the Create event.
			return nil
		}
		return fmt.Errorf("source: open %s: %w", ft.path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("source: stat %s: %w", ft.path, err)
	}

	if fi.Size() < ft.offset {
		srcLog.Info("file_truncated", slog.String("path", ft.path))
		ft.entries = nil
		ft.offset = 0
		ft.partial = ""
		ft.send(Event{Reset: true})
		initial = true
	}

	if _, err := f.Seek(ft.offset, io.SeekStart); err != nil {
		return fmt.Errorf("source: seek %s: %w", ft.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("source: read %s: %w", ft.path, err)
	}
	ft.offset += int64(len(data))

	if len(data) == 0 && !initial {
		return nil
	}

	text := ft.partial + string(data)
	lines := strings.Split(text, "\n")
	// The final element is an incomplete line (or empty after a trailing
	// newline); hold it back until it completes.
	ft.partial = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	var added []stream.Entry
	for _, line := range lines {
		e := ft.transform(line, len(ft.entries))
		ft.entries = append(ft.entries, e)
		added = append(added, e)
	}

	if len(added) == 0 && !initial {
		return nil
	}

	ft.send(Event{Update: stream.Update{
		Entries: snapshot(ft.entries),
		Append:  ft.classify(added, initial),
	}})
	return nil
}

// send delivers without blocking forever on a gone consumer.
func (ft *FileTail) send(e Event) {
	select {
	case ft.events <- e:
	case <-ft.ctx.Done():
	}
}
