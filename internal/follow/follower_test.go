package follow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclog/isaaclog/internal/classify"
	"github.com/isaaclog/isaaclog/internal/logging"
	"github.com/isaaclog/isaaclog/internal/tailer"
)

type pollResult struct {
	buf []byte
	err error
}

// scriptedPoller returns its results in order, then empty reads.
type scriptedPoller struct {
	mu      sync.Mutex
	results []pollResult
	calls   int
}

func (p *scriptedPoller) Poll() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return nil, nil
	}
	r := p.results[0]
	p.results = p.results[1:]
	return r.buf, r.err
}

func (p *scriptedPoller) Path() string { return "log.txt" }

func (p *scriptedPoller) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingOutput struct {
	mu       sync.Mutex
	lines    []classify.Line
	statuses []string
}

func (o *recordingOutput) Line(l classify.Line) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, l)
}

func (o *recordingOutput) Status(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, fmt.Sprintf(format, args...))
}

func (o *recordingOutput) Texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.lines))
	for i, l := range o.lines {
		out[i] = l.Text
	}
	return out
}

type recordingSink struct {
	mu       sync.Mutex
	written  []string
	flushes  int
	writeErr error
}

func (s *recordingSink) Write(_ context.Context, l classify.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = append(s.written, l.Text)
	return nil
}

func (s *recordingSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func ok(s string) pollResult { return pollResult{buf: []byte(s)} }

func TestTick_PrintsVisibleLines(t *testing.T) {
	p := &scriptedPoller{results: []pollResult{
		ok("[INFO] - Lua Error: boom\n[INFO] - Loading stuff\n[INFO] - Lua mem usage: 1 KB\n"),
	}}
	out := &recordingOutput{}
	f := New(p, out, WithLogger(logging.NopLogger{}))

	require.NoError(t, f.Tick(context.Background()))

	require.Len(t, out.lines, 1)
	assert.Equal(t, classify.Line{Text: "[INFO] - Lua Error: boom", Category: classify.Error}, out.lines[0])
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestTick_TailOnlyOnFirstRead(t *testing.T) {
	p := &scriptedPoller{results: []pollResult{
		ok(numberedLines(20)),
		ok("a\nb\nc\nd\n"),
	}}
	out := &recordingOutput{}
	f := New(p, out, WithFilter(classify.Filter{Tail: 3}), WithLogger(logging.NopLogger{}))

	for i := 0; i < 2; i++ {
		require.NoError(t, f.Tick(context.Background()))
	}

	assert.Equal(t, []string{"line 18", "line 19", "line 20", "a", "b", "c", "d"}, out.Texts())
}

func TestTick_TailSkippedWhenNothingAtStartup(t *testing.T) {
	missing := pollResult{err: fmt.Errorf("%w: log.txt", tailer.ErrNotPresent)}
	tests := []struct {
		name  string
		first pollResult
	}{
		{"empty file", ok("")},
		{"missing file", missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPoller{results: []pollResult{tt.first, ok(numberedLines(5))}}
			out := &recordingOutput{}
			f := New(p, out, WithFilter(classify.Filter{Tail: 2}), WithLogger(logging.NopLogger{}))

			require.NoError(t, f.Tick(context.Background()))
			require.NoError(t, f.Tick(context.Background()))

			assert.Equal(t, []string{"line 1", "line 2", "line 3", "line 4", "line 5"}, out.Texts())
		})
	}
}

func TestTick_WaitingStatusOncePerAbsence(t *testing.T) {
	missing := pollResult{err: fmt.Errorf("%w: log.txt", tailer.ErrNotPresent)}
	p := &scriptedPoller{results: []pollResult{
		missing, missing, missing,
		ok("hello\n"),
		missing, missing,
	}}
	out := &recordingOutput{}
	f := New(p, out, WithLogger(logging.NopLogger{}))

	for i := 0; i < 6; i++ {
		require.NoError(t, f.Tick(context.Background()))
	}

	assert.Equal(t, []string{
		"Waiting for log.txt to be created...",
		"Waiting for log.txt to be created...",
	}, out.statuses)
	assert.Equal(t, []string{"hello"}, out.Texts())
}

func TestTick_ReturnsFatalError(t *testing.T) {
	fatal := &tailer.FatalError{Path: "log.txt", Op: "open", Err: fs.ErrPermission}
	p := &scriptedPoller{results: []pollResult{{err: fatal}}}
	f := New(p, &recordingOutput{}, WithLogger(logging.NopLogger{}))

	err := f.Tick(context.Background())

	var fe *tailer.FatalError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestTick_MirrorsAndFlushes(t *testing.T) {
	p := &scriptedPoller{results: []pollResult{
		ok("warn one\n[INFO] - quiet\n"),
		ok(""),
	}}
	sink := &recordingSink{}
	f := New(p, &recordingOutput{}, WithSink(sink), WithLogger(logging.NopLogger{}))

	require.NoError(t, f.Tick(context.Background()))
	require.NoError(t, f.Tick(context.Background()))

	assert.Equal(t, []string{"warn one"}, sink.written)
	assert.Equal(t, 1, sink.flushes)
}

func TestTick_SinkErrorIsOnlyWarned(t *testing.T) {
	var logBuf bytes.Buffer
	p := &scriptedPoller{results: []pollResult{ok("error here\n")}}
	out := &recordingOutput{}
	sink := &recordingSink{writeErr: errors.New("disk full")}
	f := New(p, out, WithSink(sink), WithLogger(logging.NewWithOutput(&logBuf)))

	require.NoError(t, f.Tick(context.Background()))

	assert.Equal(t, []string{"error here"}, out.Texts())
	assert.Contains(t, logBuf.String(), "mirror write failed")
	assert.Contains(t, logBuf.String(), "disk full")
}

func TestRun_StopsOnCancel(t *testing.T) {
	p := &scriptedPoller{results: []pollResult{ok("first warn\n")}}
	out := &recordingOutput{}
	sink := &recordingSink{}
	f := New(p, out, WithInterval(time.Millisecond), WithSink(sink), WithLogger(logging.NopLogger{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	assert.Eventually(t, func() bool { return p.Calls() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{"first warn"}, out.Texts())
	assert.GreaterOrEqual(t, sink.flushes, 2, "flushed after the read and on exit")
}

func TestRun_ReturnsFatalError(t *testing.T) {
	fatal := &tailer.FatalError{Path: "log.txt", Op: "stat", Err: errors.New("is a directory")}
	p := &scriptedPoller{results: []pollResult{ok(""), ok(""), {err: fatal}}}
	f := New(p, &recordingOutput{}, WithInterval(time.Millisecond), WithLogger(logging.NopLogger{}))

	err := f.Run(context.Background())

	assert.Same(t, fatal, err)
	assert.Equal(t, 3, p.Calls())
}

func TestRun_WakePollsImmediately(t *testing.T) {
	p := &scriptedPoller{}
	wake := make(chan struct{}, 1)
	f := New(p, &recordingOutput{}, WithInterval(time.Hour), WithWake(wake), WithLogger(logging.NopLogger{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	assert.Eventually(t, func() bool { return p.Calls() == 1 }, time.Second, time.Millisecond)
	wake <- struct{}{}
	assert.Eventually(t, func() bool { return p.Calls() == 2 }, time.Second, time.Millisecond)
}

func TestRun_WithTailer(t *testing.T) {
	fsys := afero.NewMemMapFs()
	const path = "/games/isaac/log.txt"
	require.NoError(t, afero.WriteFile(fsys, path, []byte("old error\n"), 0o644))

	tl := tailer.NewWithFs(fsys, path)
	require.NoError(t, tl.Prime())
	defer tl.Close()

	out := &recordingOutput{}
	f := New(tl, out, WithLogger(logging.NopLogger{}))

	require.NoError(t, f.Tick(context.Background()))
	assert.Empty(t, out.Texts(), "history stays hidden after Prime")

	file, err := fsys.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("[INFO] - Connected to localhost\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, f.Tick(context.Background()))
	require.Len(t, out.lines, 1)
	assert.Equal(t, classify.ConnectionInfo, out.lines[0].Category)
}
