package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclog/isaaclog/internal/classify"
)

func newTestRenderer(noColor bool, opts ...Option) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	base := []Option{WithOutput(&out), WithError(&errOut), WithNoColor(noColor)}
	return NewRendererWithOptions(append(base, opts...)...), &out, &errOut
}

func TestLine_Plain(t *testing.T) {
	r, out, _ := newTestRenderer(true)

	r.Line(classify.Line{Text: "[INFO] - Lua Error: boom", Category: classify.Error})
	r.Line(classify.Line{Text: "stack traceback:", Category: classify.PlainMultiline})

	assert.Equal(t, "[INFO] - Lua Error: boom\nstack traceback:\n", out.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestLine_SkipsInvisible(t *testing.T) {
	r, out, _ := newTestRenderer(true)

	r.Line(classify.Line{Text: "noise", Category: classify.Suppressed})
	r.Line(classify.Line{Text: "other", Category: classify.Filtered})

	assert.Empty(t, out.String())
}

func TestLine_Colored(t *testing.T) {
	tests := []struct {
		category classify.Category
		colored  bool
	}{
		{classify.Error, true},
		{classify.Warning, true},
		{classify.Highlight, true},
		{classify.Success, true},
		{classify.ConnectionInfo, true},
		{classify.Debug, true},
		{classify.Lua, false},
		{classify.PlainMultiline, false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			r, out, _ := newTestRenderer(false)
			r.Line(classify.Line{Text: "line", Category: tt.category})

			got := out.String()
			assert.Contains(t, got, "line")
			if tt.colored {
				assert.True(t, strings.HasPrefix(got, "\x1b["), "expected escape prefix in %q", got)
				assert.Contains(t, got, "\x1b[0m")
			} else {
				assert.Equal(t, "line\n", got)
			}
		})
	}
}

func TestLine_KeepsTabs(t *testing.T) {
	r, out, _ := newTestRenderer(false)
	r.Line(classify.Line{Text: "a\tb warn", Category: classify.Warning})
	assert.Contains(t, out.String(), "a\tb warn")
}

func TestLine_Encoding(t *testing.T) {
	t.Run("unencodable becomes placeholder", func(t *testing.T) {
		r, out, _ := newTestRenderer(true, WithEncoding("cp437"))
		r.Line(classify.Line{Text: "bad \u0080 line", Category: classify.PlainMultiline})
		r.Line(classify.Line{Text: "next", Category: classify.PlainMultiline})
		assert.Equal(t, Placeholder+"\nnext\n", out.String())
	})

	t.Run("encodable text is written in the console encoding", func(t *testing.T) {
		r, out, _ := newTestRenderer(true, WithEncoding("cp437"))
		r.Line(classify.Line{Text: "café", Category: classify.PlainMultiline})
		assert.Equal(t, "caf\x82\n", out.String())
	})

	t.Run("utf-8 passes everything", func(t *testing.T) {
		r, out, _ := newTestRenderer(true, WithEncoding("utf-8"))
		r.Line(classify.Line{Text: "bad \u0080 line", Category: classify.PlainMultiline})
		assert.Equal(t, "bad \u0080 line\n", out.String())
	})
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", "windows-1252", "ISO-8859-1", "cp437", "cp850"} {
		_, ok := LookupEncoding(name)
		assert.True(t, ok, name)
	}
	_, ok := LookupEncoding("ebcdic")
	assert.False(t, ok)

	names := EncodingNames()
	assert.Contains(t, names, "utf-8")
	assert.Contains(t, names, "cp850")
}

func TestStatus(t *testing.T) {
	r, _, errOut := newTestRenderer(true)
	r.Status("Waiting for %s to exist...", "log.txt")
	assert.Equal(t, "Waiting for log.txt to exist...\n", errOut.String())

	quiet, _, quietErr := newTestRenderer(true, WithQuiet(true))
	quiet.Status("hidden")
	assert.Empty(t, quietErr.String())
}

func TestMessages(t *testing.T) {
	r, out, errOut := newTestRenderer(true)
	r.Warning("mirror %s failed", "file")
	r.Error("bad")
	r.Debug("tick")
	r.Info("hello")
	r.KeyValue("Edition", "Repentance")

	assert.Equal(t, "Warning: mirror file failed\nError: bad\n[DEBUG] tick\n", errOut.String())
	assert.Equal(t, "hello\nEdition: Repentance\n", out.String())
}

func TestTable(t *testing.T) {
	r, out, _ := newTestRenderer(true)
	r.Table([]string{"NAME", "MATCH"}, [][]string{
		{"error", `contains "error"`},
		{"lua", `contains "lua"`},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME   MATCH", lines[0])
	assert.Equal(t, "-----  ----------------", lines[1])
	assert.Equal(t, `error  contains "error"`, lines[2])
	assert.Equal(t, `lua    contains "lua"`, lines[3])
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, ColorEnabled("always", nil))
	assert.False(t, ColorEnabled("never", os.Stdout))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled("auto", os.Stdout))
}
