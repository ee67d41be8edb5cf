package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// Color palette - using ANSI 256 colors for broad terminal support
var (
	ColorCyan   = lipgloss.Color("6")
	ColorYellow = lipgloss.Color("3")
	ColorRed    = lipgloss.Color("1")
	ColorGreen  = lipgloss.Color("2")
	ColorGray   = lipgloss.Color("8")
)

// Game log palette. With the ANSI256 profile the first five render as the
// bright 9x escapes and pink as a 256-color escape.
var (
	ColorFail      = lipgloss.Color("9")
	ColorWarning   = lipgloss.Color("11")
	ColorInfoBlue  = lipgloss.Color("12")
	ColorInfoGreen = lipgloss.Color("10")
	ColorInfoCyan  = lipgloss.Color("14")
	ColorPink      = lipgloss.Color("206")
)

// CategoryColors maps display categories to their foreground color.
// Categories without an entry are printed uncolored.
var CategoryColors = map[classify.Category]lipgloss.Color{
	classify.Error:          ColorFail,
	classify.Warning:        ColorWarning,
	classify.Highlight:      ColorInfoBlue,
	classify.Success:        ColorInfoGreen,
	classify.ConnectionInfo: ColorInfoCyan,
	classify.Debug:          ColorPink,
}

// styles is the set of styles bound to one lipgloss renderer.
type styles struct {
	// Status messages ("Following...", "Waiting for...")
	status lipgloss.Style

	// Error messages
	err lipgloss.Style

	// Warning messages
	warning lipgloss.Style

	// Success messages
	success lipgloss.Style

	// Muted/secondary text
	muted lipgloss.Style

	// Labels (field names, headers)
	label lipgloss.Style

	// Section titles
	sectionTitle lipgloss.Style

	categories map[classify.Category]lipgloss.Style
}

func newStyles(lg *lipgloss.Renderer) styles {
	s := styles{
		status:       lg.NewStyle().Foreground(ColorGray).Italic(true),
		err:          lg.NewStyle().Foreground(ColorRed).Bold(true),
		warning:      lg.NewStyle().Foreground(ColorYellow),
		success:      lg.NewStyle().Foreground(ColorGreen),
		muted:        lg.NewStyle().Foreground(ColorGray),
		label:        lg.NewStyle().Foreground(ColorCyan).Bold(true),
		sectionTitle: lg.NewStyle().Bold(true).Foreground(ColorCyan).MarginBottom(1),
		categories:   make(map[classify.Category]lipgloss.Style, len(CategoryColors)),
	}
	for cat, color := range CategoryColors {
		// Game lines are printed as-is, tabs included.
		s.categories[cat] = lg.NewStyle().Foreground(color).TabWidth(lipgloss.NoTabConversion)
	}
	return s
}
