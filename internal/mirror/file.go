package mirror

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// Format specifies how a file mirror writes lines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func init() {
	Register("file", openFile)
}

// FileSink appends lines to a file.
type FileSink struct {
	path   string
	format Format
	file   afero.File
	w      *bufio.Writer
	csv    *csv.Writer
	json   *json.Encoder
	now    func() time.Time
}

type jsonLine struct {
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Text      string `json:"text"`
}

// OpenFile opens path for appending on fsys, creating it and its directory
// when missing.
func OpenFile(fsys afero.Fs, path string, format Format) (*FileSink, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON, FormatCSV:
	default:
		return nil, fmt.Errorf("unknown file mirror format %q (use text, json or csv)", format)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror file: %w", err)
	}

	s := &FileSink{path: path, format: format, file: f, w: bufio.NewWriter(f), now: time.Now}
	switch format {
	case FormatJSON:
		s.json = json.NewEncoder(s.w)
	case FormatCSV:
		s.csv = csv.NewWriter(s.w)
	}
	return s, nil
}

func openFile(u *url.URL, _ OpenOptions) (Sink, error) {
	path := filepath.FromSlash(u.Host + u.Path)
	if path == "" {
		return nil, fmt.Errorf("file mirror URI %q has no path", u.String())
	}
	return OpenFile(afero.NewOsFs(), path, Format(u.Query().Get("format")))
}

// Path returns the file being written.
func (s *FileSink) Path() string {
	return s.path
}

// Write buffers one line.
func (s *FileSink) Write(_ context.Context, l classify.Line) error {
	switch s.format {
	case FormatJSON:
		return s.json.Encode(jsonLine{
			Timestamp: s.now().Format(time.RFC3339),
			Category:  l.Category.String(),
			Text:      l.Text,
		})
	case FormatCSV:
		return s.csv.Write([]string{s.now().Format(time.RFC3339), l.Category.String(), l.Text})
	default:
		if _, err := s.w.WriteString(l.Text); err != nil {
			return err
		}
		return s.w.WriteByte('\n')
	}
}

// Flush writes buffered lines to the file.
func (s *FileSink) Flush(context.Context) error {
	if s.csv != nil {
		s.csv.Flush()
		if err := s.csv.Error(); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	flushErr := s.Flush(context.Background())
	if err := s.file.Close(); err != nil {
		return err
	}
	return flushErr
}
