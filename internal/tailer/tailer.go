// Package tailer reads the newly appended part of a single growing file.
package tailer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// ErrNotPresent is returned while the file does not exist. The game creates
// its log only when it starts, so callers retry on the next poll.
var ErrNotPresent = errors.New("log file not present")

// FatalError reports a problem that will not go away by waiting, such as a
// permission error or a path pointing at a directory.
type FatalError struct {
	Path string
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// State is a snapshot of what the Tailer tracks.
type State struct {
	Opened    bool
	Watermark int64 // offset through which the file has been read
	Size      int64 // size seen by the last stat
}

// Tailer tracks a read watermark over one file. It owns the open handle;
// nothing else may read from or close it.
type Tailer struct {
	fs        afero.Fs
	path      string
	file      afero.File
	watermark int64
	size      int64
}

// New creates a Tailer for path on the OS filesystem.
func New(path string) *Tailer {
	return NewWithFs(afero.NewOsFs(), path)
}

// NewWithFs creates a Tailer reading through fsys.
func NewWithFs(fsys afero.Fs, path string) *Tailer {
	return &Tailer{fs: fsys, path: path}
}

// Path returns the followed path.
func (t *Tailer) Path() string {
	return t.path
}

// State returns the current watch state.
func (t *Tailer) State() State {
	return State{
		Opened:    t.file != nil,
		Watermark: t.watermark,
		Size:      t.size,
	}
}

// Prime opens the file and moves the watermark to its current end, so the
// existing content is never returned. A missing file is not an error; the
// first poll after it appears reads it from the start.
func (t *Tailer) Prime() error {
	size, err := t.stat()
	if err != nil {
		if errors.Is(err, ErrNotPresent) {
			return nil
		}
		return err
	}
	if err := t.reopen(); err != nil {
		if errors.Is(err, ErrNotPresent) {
			return nil
		}
		return err
	}
	t.watermark = size
	return nil
}

// Poll returns the bytes appended since the previous call. It returns nil
// without touching the handle when the size has not changed. When the file
// shrank it is reopened and read from the start.
func (t *Tailer) Poll() ([]byte, error) {
	size, err := t.stat()
	if err != nil {
		return nil, err
	}
	if size == t.watermark {
		return nil, nil
	}

	var offset int64
	if t.file == nil || t.watermark > size {
		if err := t.reopen(); err != nil {
			return nil, err
		}
	} else {
		offset = t.watermark
		if _, err := t.file.Seek(offset, io.SeekStart); err != nil {
			return nil, &FatalError{Path: t.path, Op: "seek", Err: err}
		}
	}

	data, err := io.ReadAll(io.LimitReader(t.file, size-offset))
	if err != nil {
		return nil, &FatalError{Path: t.path, Op: "read", Err: err}
	}

	t.watermark = size
	return data, nil
}

// Close releases the handle. The Tailer can still be polled afterwards and
// will reopen the file from the start.
func (t *Tailer) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

func (t *Tailer) stat() (int64, error) {
	info, err := t.fs.Stat(t.path)
	if err != nil {
		return 0, t.classify("stat", err)
	}
	if info.IsDir() {
		return 0, &FatalError{Path: t.path, Op: "stat", Err: errors.New("is a directory, not a log file")}
	}
	t.size = info.Size()
	return t.size, nil
}

func (t *Tailer) reopen() error {
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
	f, err := t.fs.Open(t.path)
	if err != nil {
		return t.classify("open", err)
	}
	t.file = f
	return nil
}

func (t *Tailer) classify(op string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotPresent, t.path)
	}
	return &FatalError{Path: t.path, Op: op, Err: err}
}
