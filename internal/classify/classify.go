// Package classify turns raw log bytes into display lines.
//
// A buffer is split into lines, decoded as ISO-8859-1 so that arbitrary
// bytes always produce text, and each line goes through three stages in a
// fixed order: the built-in noise table, the user's grep filter, and the
// category table. Lines rejected by an earlier stage never reach a later
// one, so a noisy line cannot be surfaced by grepping for it.
package classify

import (
	"bufio"
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// Classify splits buf into lines and returns the ones that should be shown,
// in order.
func Classify(buf []byte, f Filter) []Line {
	raw := Select(SplitLines(buf), f.Tail)
	c := newClassifier(f)

	var out []Line
	for _, r := range raw {
		if l := c.line(r); l.Category.Visible() {
			out = append(out, l)
		}
	}
	return out
}

// ClassifyLine returns the verdict for a single raw line, including
// Suppressed and Filtered ones.
func ClassifyLine(raw []byte, f Filter) Line {
	return newClassifier(f).line(raw)
}

// Select returns the last tail lines, or all of them when tail <= 0.
func Select(lines [][]byte, tail int) [][]byte {
	if tail <= 0 || tail >= len(lines) {
		return lines
	}
	return lines[len(lines)-tail:]
}

// SplitLines splits buf on "\n", "\r\n" and "\r". A trailing line break
// does not produce an empty final line.
func SplitLines(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(buf))
	scanner.Buffer(make([]byte, 0, min(len(buf)+1, 64*1024)), len(buf)+1)
	scanner.Split(ScanLines)

	var lines [][]byte
	for scanner.Scan() {
		lines = append(lines, bytes.Clone(scanner.Bytes()))
	}
	return lines
}

// ScanLines is a bufio.SplitFunc like bufio.ScanLines that also accepts a
// lone carriage return as a line break.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, c := range data {
		switch c {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// Need the next byte to tell "\r" from "\r\n".
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Decode maps every byte to the ISO-8859-1 rune of the same value. It
// cannot fail: corrupted bytes from the game still produce printable text.
func Decode(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return b.String()
}

// Trim removes surrounding whitespace, including the ASCII file, group,
// record and unit separators.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
	})
}

type classifier struct {
	grep      string
	highlight string
}

func newClassifier(f Filter) classifier {
	return classifier{
		grep:      strings.ToLower(f.Grep),
		highlight: strings.ToLower(f.Highlight),
	}
}

func (c classifier) line(raw []byte) Line {
	text := Trim(Decode(raw))
	if text == "" {
		return Line{Category: Suppressed}
	}

	lower := strings.ToLower(text)
	for _, r := range NoiseRules {
		if r.Match(lower) {
			return Line{Text: text, Category: Suppressed}
		}
	}

	if c.grep != "" && !strings.Contains(lower, c.grep) {
		return Line{Text: text, Category: Filtered}
	}

	s := subject{text: text, lower: lower, highlight: c.highlight}
	for _, r := range CategoryRules {
		if r.match(s) {
			return Line{Text: text, Category: r.Category}
		}
	}

	// Plain [INFO] lines.
	return Line{Text: text, Category: Suppressed}
}
