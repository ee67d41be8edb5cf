// Package follow drives the poll loop: read what the game appended,
// classify it, print it and copy it to the mirror.
package follow

import (
	"context"
	"errors"
	"time"

	"github.com/isaaclog/isaaclog/internal/classify"
	"github.com/isaaclog/isaaclog/internal/logging"
	"github.com/isaaclog/isaaclog/internal/tailer"
)

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 100 * time.Millisecond

// flushTimeout bounds the final sink flush after the loop is cancelled.
const flushTimeout = 5 * time.Second

// Poller returns newly appended bytes. *tailer.Tailer implements it.
type Poller interface {
	Poll() ([]byte, error)
	Path() string
}

// Output receives visible lines and status messages. *ui.Renderer
// implements it.
type Output interface {
	Line(l classify.Line)
	Status(format string, args ...any)
}

// Sink receives a copy of every visible line.
type Sink interface {
	Write(ctx context.Context, l classify.Line) error
	Flush(ctx context.Context) error
}

// Follower polls a log on a fixed period and forwards the classified lines.
type Follower struct {
	poller   Poller
	out      Output
	filter   classify.Filter
	interval time.Duration
	wake     <-chan struct{}
	sink     Sink
	logger   logging.Logger

	polled bool // the startup read has happened
	absent bool // the last poll found no file
}

// Option configures a Follower.
type Option func(*Follower)

// WithFilter sets the grep, highlight and tail settings.
func WithFilter(f classify.Filter) Option {
	return func(fl *Follower) {
		fl.filter = f
	}
}

// WithInterval sets the poll period. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(fl *Follower) {
		if d > 0 {
			fl.interval = d
		}
	}
}

// WithWake adds a channel whose signals trigger an immediate poll.
func WithWake(ch <-chan struct{}) Option {
	return func(fl *Follower) {
		fl.wake = ch
	}
}

// WithSink copies every visible line to s.
func WithSink(s Sink) Option {
	return func(fl *Follower) {
		fl.sink = s
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(fl *Follower) {
		fl.logger = l
	}
}

// New creates a Follower reading from p and printing to out.
func New(p Poller, out Output, opts ...Option) *Follower {
	f := &Follower{
		poller:   p,
		out:      out,
		interval: DefaultInterval,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.WithField("path", p.Path())
	return f
}

// Tick runs one poll cycle. A missing file is reported once per absence and
// is not an error; anything else the poller returns is. The tail count only
// applies to the first poll, which returns the content present at startup.
func (f *Follower) Tick(ctx context.Context) error {
	buf, err := f.poller.Poll()
	startup := !f.polled
	f.polled = true
	if errors.Is(err, tailer.ErrNotPresent) {
		if !f.absent {
			f.absent = true
			f.out.Status("Waiting for %s to be created...", f.poller.Path())
		}
		return nil
	}
	if err != nil {
		return err
	}
	if f.absent {
		f.absent = false
		f.logger.Info("log file appeared")
	}
	if len(buf) == 0 {
		return nil
	}

	filter := f.filter
	if !startup {
		filter.Tail = 0
	}

	lines := classify.Classify(buf, filter)
	f.logger.WithFields(map[string]interface{}{
		"bytes": len(buf),
		"lines": len(lines),
	}).Debug("read appended span")

	for _, l := range lines {
		f.out.Line(l)
		f.mirror(ctx, l)
	}
	if len(lines) > 0 {
		f.flush(ctx)
	}
	return nil
}

// Run ticks immediately and then on every interval or wake signal until ctx
// is cancelled or a tick fails.
func (f *Follower) Run(ctx context.Context) error {
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
		f.flush(flushCtx)
	}()

	if err := f.Tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-f.wake:
		}
		if err := f.Tick(ctx); err != nil {
			return err
		}
	}
}

func (f *Follower) mirror(ctx context.Context, l classify.Line) {
	if f.sink == nil {
		return
	}
	if err := f.sink.Write(ctx, l); err != nil {
		f.logger.WithField("error", err).Warn("mirror write failed")
	}
}

func (f *Follower) flush(ctx context.Context) {
	if f.sink == nil {
		return
	}
	if err := f.sink.Flush(ctx); err != nil {
		f.logger.WithField("error", err).Warn("mirror flush failed")
	}
}
