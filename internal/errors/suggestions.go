// Package errors provides enhanced error messages with suggestions.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// SuggestiveError is an error that includes suggestions for fixing the problem.
type SuggestiveError struct {
	Message     string
	Suggestions []string
	HelpCommand string
	Err         error
}

func (e *SuggestiveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, s := range e.Suggestions {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	if e.HelpCommand != "" {
		b.WriteString("\nRun '")
		b.WriteString(e.HelpCommand)
		b.WriteString("' for more information.")
	}

	return b.String()
}

func (e *SuggestiveError) Unwrap() error {
	return e.Err
}

// UnreadableLogError wraps a failure that waiting will not fix.
func UnreadableLogError(path string, err error) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("cannot follow %s: %v", path, err),
		Suggestions: []string{
			"isaaclog -f <path-to-log.txt>       - Follow a different file",
			"isaaclog --edition Repentance+      - Use another game edition's default path",
			"Check that your user can read the file and that it is not a directory",
		},
		HelpCommand: "isaaclog --help",
		Err:         err,
	}
}

// UnknownEditionError creates an error for an edition name that has no
// default log directory.
func UnknownEditionError(name string, available []string) error {
	similar := findSimilar(name, available, 4)
	if len(similar) == 0 {
		similar = available
	}
	return &SuggestiveError{
		Message:     fmt.Sprintf("unknown game edition %q", name),
		Suggestions: similar,
		HelpCommand: "isaaclog --help",
	}
}

// UnknownEncodingError creates an error for an unsupported console encoding.
func UnknownEncodingError(name string, available []string) error {
	similar := findSimilar(name, available, 3)
	if len(similar) == 0 {
		similar = available
	}
	return &SuggestiveError{
		Message:     fmt.Sprintf("unsupported output encoding %q", name),
		Suggestions: similar,
	}
}

// UnknownMirrorError creates an error for a mirror alias missing from the
// config file.
func UnknownMirrorError(name string, available []string) error {
	similar := findSimilar(name, available, 3)
	if len(similar) == 0 && len(available) <= 5 {
		similar = available
	}
	return &SuggestiveError{
		Message:     fmt.Sprintf("mirror alias %q not found", name),
		Suggestions: similar,
		HelpCommand: "isaaclog config",
	}
}

// InvalidValueError creates an error for a configuration value outside its
// allowed set.
func InvalidValueError(key, value string, examples []string) error {
	return &SuggestiveError{
		Message:     fmt.Sprintf("invalid %s %q", key, value),
		Suggestions: examples,
		HelpCommand: "isaaclog config",
	}
}

// findSimilar finds strings similar to target using Levenshtein distance.
func findSimilar(target string, candidates []string, maxDistance int) []string {
	type match struct {
		value    string
		distance int
	}

	var matches []match
	targetLower := strings.ToLower(target)

	for _, c := range candidates {
		d := levenshtein.Distance(targetLower, strings.ToLower(c), nil)
		if d <= maxDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	var result []string
	for i := 0; i < len(matches) && i < 3; i++ {
		result = append(result, matches[i].value)
	}

	return result
}
