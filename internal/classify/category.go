package classify

// Category decides how a line is displayed and whether it is shown at all.
type Category int

const (
	Suppressed Category = iota
	Filtered
	Error
	Warning
	Highlight
	Success
	ConnectionInfo
	Debug
	Lua
	PlainMultiline
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case Suppressed:
		return "suppressed"
	case Filtered:
		return "filtered"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Highlight:
		return "highlight"
	case Success:
		return "success"
	case ConnectionInfo:
		return "connection"
	case Debug:
		return "debug"
	case Lua:
		return "lua"
	case PlainMultiline:
		return "plain"
	default:
		return "unknown"
	}
}

// Visible reports whether lines of this category are printed.
func (c Category) Visible() bool {
	return c != Suppressed && c != Filtered
}

// Line is a decoded, trimmed log line and its display category.
type Line struct {
	Text     string
	Category Category
}

// Filter holds the user-supplied selection options. The zero value shows
// everything the rule tables allow.
type Filter struct {
	Grep      string // case-insensitive substring a line must contain
	Highlight string // case-insensitive substring rendered in the highlight color
	Tail      int    // keep only the last N raw lines when > 0
}
