package mirror

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	clerrors "github.com/isaaclog/isaaclog/internal/errors"
)

// Opener opens a sink from a parsed URI.
type Opener func(u *url.URL, opts OpenOptions) (Sink, error)

// OpenOptions provides default values for sink configuration.
// These can be overridden by URI query parameters.
type OpenOptions struct {
	Profile string            // Default AWS profile
	Region  string            // Default AWS region
	Aliases map[string]string // name -> URI, from the config file
}

// registry holds registered openers by scheme.
var registry = make(map[string]Opener)

// Register adds an opener for the given URI scheme.
// This should be called during init() by each sink implementation.
func Register(scheme string, opener Opener) {
	registry[scheme] = opener
}

// Open parses a URI and returns the matching Sink.
// Supports:
//   - file:///path/to/file (or bare paths like ./copy.txt)
//   - cloudwatch:///log-group (uses -p profile flag)
//   - @alias (resolved from opts.Aliases)
func Open(uri string, opts OpenOptions) (Sink, error) {
	if strings.HasPrefix(uri, "@") {
		return openAlias(uri[1:], opts)
	}

	// Handle bare paths as file://
	if !strings.Contains(uri, "://") {
		uri = "file://" + filepath.ToSlash(expandPath(uri))
	}

	// Detect common URI mistakes
	if err := validateURISyntax(uri); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror URI %q: %w", uri, err)
	}

	opener, ok := registry[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("unknown mirror scheme: %s (available: %s)", parsed.Scheme, availableSchemes())
	}

	return opener(parsed, opts)
}

func openAlias(name string, opts OpenOptions) (Sink, error) {
	target, ok := opts.Aliases[name]
	if !ok {
		available := make([]string, 0, len(opts.Aliases))
		for k := range opts.Aliases {
			available = append(available, "@"+k)
		}
		sort.Strings(available)
		return nil, clerrors.UnknownMirrorError("@"+name, available)
	}
	if strings.HasPrefix(target, "@") {
		return nil, fmt.Errorf("mirror alias @%s points at another alias (%s)", name, target)
	}
	return Open(target, opts)
}

// validateURISyntax checks for common URI mistakes and returns helpful errors.
func validateURISyntax(uri string) error {
	// Check for @ used instead of ? for query parameters
	// Pattern: scheme:///path@key=value (should be scheme:///path?key=value)
	if idx := strings.Index(uri, "://"); idx > 0 {
		rest := uri[idx+3:]
		if atIdx := strings.Index(rest, "@"); atIdx > 0 {
			afterAt := rest[atIdx+1:]
			if strings.Contains(afterAt, "=") && !strings.Contains(rest[:atIdx], "?") {
				return fmt.Errorf("invalid URI %q: use '?' for query parameters, not '@'", uri)
			}
		}
	}

	// Check for missing scheme (common: forgetting cloudwatch://)
	if strings.HasPrefix(uri, "///") {
		return fmt.Errorf("invalid URI %q: missing scheme (e.g., cloudwatch:///log-group)", uri)
	}

	return nil
}

func availableSchemes() string {
	schemes := make([]string, 0, len(registry))
	for s := range registry {
		schemes = append(schemes, s)
	}
	if len(schemes) == 0 {
		return "(none registered)"
	}
	sort.Strings(schemes)
	return strings.Join(schemes, ", ")
}

// expandPath resolves ~ to home directory and converts relative paths to absolute.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}
