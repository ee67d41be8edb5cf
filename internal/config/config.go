// Package config holds isaaclog settings and the default log location.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	clerrors "github.com/isaaclog/isaaclog/internal/errors"
)

// Defaults.
const (
	DefaultEdition      = "Repentance"
	DefaultInterval     = 100 * time.Millisecond
	DefaultColor        = ColorAuto
	DefaultEncoding     = "utf-8"
	DefaultConfigName   = ".isaaclog"
	DefaultConfigSubdir = ".isaaclog"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Editions lists the releases whose documents folder name is known.
var Editions = []string{"Rebirth", "Afterbirth", "Afterbirth+", "Repentance", "Repentance+"}

// Config is the merged configuration from flags, environment and file.
type Config struct {
	LogFile        string            `mapstructure:"log_file" yaml:"log_file"`
	Edition        string            `mapstructure:"edition" yaml:"edition"`
	User           string            `mapstructure:"user" yaml:"user,omitempty"`
	Interval       time.Duration     `mapstructure:"interval" yaml:"interval"`
	Color          string            `mapstructure:"color" yaml:"color"`
	OutputEncoding string            `mapstructure:"output_encoding" yaml:"output_encoding"`
	Watch          bool              `mapstructure:"watch" yaml:"watch"`
	Mirror         string            `mapstructure:"mirror" yaml:"mirror,omitempty"`
	Mirrors        map[string]string `mapstructure:"mirrors" yaml:"mirrors,omitempty"`
	Profile        string            `mapstructure:"profile" yaml:"profile,omitempty"`
	Region         string            `mapstructure:"region" yaml:"region,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Edition:        DefaultEdition,
		Interval:       DefaultInterval,
		Color:          DefaultColor,
		OutputEncoding: DefaultEncoding,
		Watch:          true,
	}
}

// Validate checks values that cannot be fixed up silently.
func (c Config) Validate() error {
	if c.LogFile == "" {
		if _, ok := CanonicalEdition(c.Edition); !ok {
			return clerrors.UnknownEditionError(c.Edition, Editions)
		}
	}
	if c.Interval <= 0 {
		return clerrors.InvalidValueError("interval", c.Interval.String(), []string{"100ms", "250ms", "1s"})
	}
	switch strings.ToLower(c.Color) {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return clerrors.InvalidValueError("color mode", c.Color, []string{ColorAuto, ColorAlways, ColorNever})
	}
	return nil
}

// ResolveLogFile returns the configured path, or the game's default
// location for the configured edition and user.
func (c Config) ResolveLogFile() (string, error) {
	if c.LogFile != "" {
		return expandPath(c.LogFile), nil
	}
	edition, ok := CanonicalEdition(c.Edition)
	if !ok {
		return "", clerrors.UnknownEditionError(c.Edition, Editions)
	}
	name := c.User
	if name == "" {
		name = CurrentUser()
	}
	home, _ := os.UserHomeDir()
	return DefaultLogPath(runtime.GOOS, name, home, edition), nil
}

// CanonicalEdition matches name case-insensitively against Editions.
func CanonicalEdition(name string) (string, bool) {
	for _, e := range Editions {
		if strings.EqualFold(e, strings.TrimSpace(name)) {
			return e, true
		}
	}
	return "", false
}

// DefaultLogPath builds the path the game writes log.txt to. On Windows it
// is derived from the user name, elsewhere from the home directory.
func DefaultLogPath(goos, userName, home, edition string) string {
	dir := "Binding of Isaac " + edition
	if goos == "windows" {
		return `C:\Users\` + userName + `\Documents\My Games\` + dir + `\log.txt`
	}
	return filepath.Join(home, "Documents", "My Games", dir, "log.txt")
}

// CurrentUser returns the login name without any Windows domain prefix.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, env := range []string{"USERNAME", "USER"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "user"
}

// Path returns the default config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigName+".yaml")
}

// expandPath resolves ~ to the home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
