package classify

import "strings"

// NoiseRule drops a line the game logs constantly and which carries no
// information while developing mods. All fields are matched against the
// lower-cased line; empty fields are ignored, so a rule with Prefix and
// Suffix requires both.
type NoiseRule struct {
	Name   string
	Prefix string
	Suffix string
	Exact  string
}

// Match reports whether the lower-cased line matches the rule.
func (r NoiseRule) Match(lower string) bool {
	if r.Exact != "" && lower != r.Exact {
		return false
	}
	if r.Prefix != "" && !strings.HasPrefix(lower, r.Prefix) {
		return false
	}
	if r.Suffix != "" && !strings.HasSuffix(lower, r.Suffix) {
		return false
	}
	return r.Exact != "" || r.Prefix != "" || r.Suffix != ""
}

// Describe renders the matching condition for listings.
func (r NoiseRule) Describe() string {
	var parts []string
	if r.Exact != "" {
		parts = append(parts, "equals "+quote(r.Exact))
	}
	if r.Prefix != "" {
		parts = append(parts, "starts with "+quote(r.Prefix))
	}
	if r.Suffix != "" {
		parts = append(parts, "ends with "+quote(r.Suffix))
	}
	return strings.Join(parts, " and ")
}

// NoiseRules is fixed at build time and evaluated before any user filter.
var NoiseRules = []NoiseRule{
	{
		Name:   "sound-no-samples",
		Prefix: "[info] - [warn] sound",
		Suffix: "has no samples.",
	},
	{
		Name:   "lua-mem-usage",
		Prefix: "[info] - lua mem usage: ",
	},
	{
		Name:  "steamcloud-disabled",
		Exact: "[info] - [warn] steamcloud is either not available or disabled in options.ini.",
	},
	{
		Name:   "missing-animation",
		Prefix: "[info] - [warn] no animation named ",
	},
	{
		Name:   "boss-without-deathspawn",
		Prefix: "[info] - [warn] last boss died without triggering the deathspawn.",
	},
	{
		Name:   "item-pool-repicks",
		Prefix: "[info] - [warn] item pool ran out of repicks",
	},
	{
		Name:   "start-seed-unset",
		Prefix: "[assert] - error: game start seed was not set.",
	},
	{
		Name:   "entity-teleport",
		Prefix: "[assert] - entity teleport detected!",
	},
}

// subject is the per-line view the category predicates work on.
type subject struct {
	text      string
	lower     string
	highlight string // already lower-cased; empty when unset
}

// CategoryRule assigns a category when its predicate matches.
type CategoryRule struct {
	Name        string
	Category    Category
	Description string
	match       func(s subject) bool
}

// CategoryRules are evaluated in order and the first match wins. A line
// that matches none of them is a plain info line and is not shown.
//
// Error and warning rules come before the highlight rule, so a highlight
// term never recolors an error or warning line.
var CategoryRules = []CategoryRule{
	{
		Name:        "error",
		Category:    Error,
		Description: `contains "error", "failed" or " err: " (any case)`,
		match:       lowerContainsAny("error", "failed", " err: "),
	},
	{
		Name:        "warning",
		Category:    Warning,
		Description: `contains "warn" (any case)`,
		match:       lowerContainsAny("warn"),
	},
	{
		Name:        "highlight",
		Category:    Highlight,
		Description: "contains the -s term (any case)",
		match: func(s subject) bool {
			return s.highlight != "" && strings.Contains(s.lower, s.highlight)
		},
	},
	{
		Name:        "compilation",
		Category:    Success,
		Description: `contains "Compilation successful."`,
		match:       containsAny("Compilation successful."),
	},
	{
		Name:        "connection",
		Category:    ConnectionInfo,
		Description: `contains "MC_POST_GAME_STARTED" or "Connected to localhost"`,
		match:       containsAny("MC_POST_GAME_STARTED", "Connected to localhost"),
	},
	{
		Name:        "getting-here",
		Category:    Debug,
		Description: `contains "getting here" (any case)`,
		match:       lowerContainsAny("getting here"),
	},
	{
		Name:        "lua",
		Category:    Lua,
		Description: `contains "lua" (any case)`,
		match:       lowerContainsAny("lua"),
	},
	{
		Name:        "multiline",
		Category:    PlainMultiline,
		Description: `does not start with "[info]" (any case)`,
		match: func(s subject) bool {
			return !strings.HasPrefix(s.lower, "[info]")
		},
	},
}

func containsAny(needles ...string) func(s subject) bool {
	return func(s subject) bool {
		for _, n := range needles {
			if strings.Contains(s.text, n) {
				return true
			}
		}
		return false
	}
}

// lowerContainsAny expects lower-case needles.
func lowerContainsAny(needles ...string) func(s subject) bool {
	return func(s subject) bool {
		for _, n := range needles {
			if strings.Contains(s.lower, n) {
				return true
			}
		}
		return false
	}
}

func quote(s string) string {
	return `"` + s + `"`
}
