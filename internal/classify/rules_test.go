package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseRule_Match(t *testing.T) {
	tests := []struct {
		name  string
		rule  NoiseRule
		line  string
		match bool
	}{
		{"prefix", NoiseRule{Prefix: "[info] - a"}, "[info] - abc", true},
		{"prefix miss", NoiseRule{Prefix: "[info] - a"}, "[info] - b", false},
		{"prefix and suffix", NoiseRule{Prefix: "x", Suffix: "z"}, "xyz", true},
		{"prefix without suffix", NoiseRule{Prefix: "x", Suffix: "z"}, "xy", false},
		{"exact", NoiseRule{Exact: "abc"}, "abc", true},
		{"exact is not prefix", NoiseRule{Exact: "abc"}, "abcd", false},
		{"empty rule never matches", NoiseRule{}, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, tt.rule.Match(tt.line))
		})
	}
}

func TestNoiseRules_AreLowerCase(t *testing.T) {
	for _, r := range NoiseRules {
		for _, s := range []string{r.Prefix, r.Suffix, r.Exact} {
			assert.Equal(t, strings.ToLower(s), s, "rule %s must be lower-case", r.Name)
		}
		assert.NotEmpty(t, r.Describe(), "rule %s", r.Name)
	}
}

func TestCategoryRules_Order(t *testing.T) {
	var got []Category
	for _, r := range CategoryRules {
		got = append(got, r.Category)
	}
	assert.Equal(t, []Category{
		Error, Warning, Highlight, Success, ConnectionInfo, Debug, Lua, PlainMultiline,
	}, got)
}

func TestCategory_Visible(t *testing.T) {
	assert.False(t, Suppressed.Visible())
	assert.False(t, Filtered.Visible())
	for _, c := range []Category{Error, Warning, Highlight, Success, ConnectionInfo, Debug, Lua, PlainMultiline} {
		assert.True(t, c.Visible(), c.String())
	}
	assert.Equal(t, "unknown", Category(99).String())
}
