package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/text/encoding"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// Placeholder replaces a game line the console encoding cannot represent.
const Placeholder = "[Unable to print line due to corrupted characters.]"

// Renderer handles all terminal output with consistent styling.
type Renderer struct {
	out     io.Writer
	err     io.Writer
	noColor bool
	quiet   bool
	encName string
	encoder *encoding.Encoder
	styles  styles
}

// NewRenderer creates a new Renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithError sets the error writer.
func WithError(w io.Writer) Option {
	return func(r *Renderer) {
		r.err = w
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(r *Renderer) {
		r.noColor = noColor
	}
}

// WithQuiet enables quiet mode (suppresses status messages).
func WithQuiet(quiet bool) Option {
	return func(r *Renderer) {
		r.quiet = quiet
	}
}

// WithEncoding sets the console encoding game lines are checked against.
// Unknown names are treated as UTF-8; validate with LookupEncoding first.
func WithEncoding(name string) Option {
	return func(r *Renderer) {
		r.encName = name
	}
}

// NewRendererWithOptions creates a new Renderer with the given options.
func NewRendererWithOptions(opts ...Option) *Renderer {
	r := NewRenderer()
	for _, opt := range opts {
		opt(r)
	}

	lg := lipgloss.NewRenderer(r.out)
	if r.noColor {
		lg.SetColorProfile(termenv.Ascii)
	} else {
		lg.SetColorProfile(termenv.ANSI256)
	}
	r.styles = newStyles(lg)

	if enc, ok := LookupEncoding(r.encName); ok {
		r.encoder = enc
	}
	return r
}

// ColorEnabled resolves a color mode (auto, always, never) for the given
// output file. Auto means a terminal without NO_COLOR set.
func ColorEnabled(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// render applies styling if color is enabled.
func (r *Renderer) render(style lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return style.Render(text)
}

// --- Game Lines ---

// Line prints one classified game line in its category color. Lines that
// are not visible print nothing.
func (r *Renderer) Line(l classify.Line) {
	if !l.Category.Visible() {
		return
	}

	text := l.Text
	if r.encoder != nil {
		encoded, err := r.encoder.String(text)
		if err != nil {
			fmt.Fprintln(r.out, Placeholder)
			return
		}
		text = encoded
	}

	if style, ok := r.styles.categories[l.Category]; ok {
		text = r.render(style, text)
	}
	fmt.Fprintln(r.out, text)
}

// --- Status and Messages ---

// Status prints a status message (suppressed in quiet mode).
func (r *Renderer) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(r.styles.status, msg))
}

// Info prints an informational message.
func (r *Renderer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, msg)
}

// Success prints a success message.
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, r.render(r.styles.success, msg))
}

// Warning prints a warning message.
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(r.styles.warning, "Warning: "+msg))
}

// Error prints an error message.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(r.styles.err, "Error: "+msg))
}

// Debug prints a debug message (only when verbose).
func (r *Renderer) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(r.styles.muted, "[DEBUG] "+msg))
}

// --- Formatted Output ---

// KeyValue prints a key-value pair.
func (r *Renderer) KeyValue(key, value string) {
	label := r.render(r.styles.label, key+":")
	fmt.Fprintf(r.out, "%s %s\n", label, value)
}

// Section prints a section title.
func (r *Renderer) Section(title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.render(r.styles.sectionTitle, title))
}

// --- Table Rendering ---

// Table renders a simple table.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = r.render(r.styles.label, fmt.Sprintf("%-*s", widths[i], h))
	}
	fmt.Fprintln(r.out, strings.TrimRight(strings.Join(headerParts, "  "), " "))

	// Print separator
	sepParts := make([]string, len(headers))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(r.out, r.render(r.styles.muted, strings.Join(sepParts, "  ")))

	// Print rows
	for _, row := range rows {
		rowParts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowParts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(r.out, strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}
