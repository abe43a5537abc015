// Package region buffers the lines of one open snippet region and normalizes
// them when the region is closed: common indentation is removed, overlong
// lines are flagged and, for FINISH-style closes, missing closing braces are
// synthesized.
package region

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jward/codesnippet/internal/marker"
)

// DefaultMaxLineLength is the line length limit used when none is configured.
const DefaultMaxLineLength = 80

// IssueKind identifies a problem found while closing a region.
type IssueKind int

const (
	// IssueLongLine means a dedented line exceeds the maximum length.
	IssueLongLine IssueKind = iota + 1
	// IssueUnpairedBraces means open and close brace counts differ after a
	// strict close.
	IssueUnpairedBraces
)

// Issue is a problem found while closing a region. Issues never stop the
// close; the caller decides how to report them.
type Issue struct {
	Kind IssueKind
	// Line is the 1-based line within the region, 0 when not line specific.
	Line    int
	Message string
}

// Accumulator collects the raw lines of one open region.
type Accumulator struct {
	lines  []string
	indent int
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{indent: math.MaxInt}
}

// Append adds one raw source line. The minimum indentation only considers
// lines with non-space content.
func (a *Accumulator) Append(line string) {
	if n := leadingSpaces(line); n < len(line) && n < a.indent {
		a.indent = n
	}
	a.lines = append(a.lines, line)
}

// Len returns the number of buffered lines.
func (a *Accumulator) Len() int {
	return len(a.lines)
}

// Indent returns the smallest indentation seen so far, or -1 if no line
// with content was appended.
func (a *Accumulator) Indent() int {
	if a.indent == math.MaxInt {
		return -1
	}
	return a.indent
}

// Close normalizes the buffered text. Every line of the result ends with a
// newline. maxLineLength <= 0 disables the length check.
func (a *Accumulator) Close(kind marker.Close, maxLineLength int) (string, []Issue) {
	var (
		sb     strings.Builder
		issues []Issue
	)
	for i, line := range a.lines {
		line = line[min(leadingSpaces(line), a.indent):]
		if maxLineLength > 0 && utf8.RuneCountInString(line) > maxLineLength {
			issues = append(issues, Issue{
				Kind:    IssueLongLine,
				Line:    i + 1,
				Message: fmt.Sprintf("line %d has %d characters, limit is %d", i+1, utf8.RuneCountInString(line), maxLineLength),
			})
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	text := sb.String()

	if kind == marker.ClosePassthrough {
		return text, issues
	}

	if kind == marker.CloseFinish {
		for missing := CountBraces(text); missing > 0; missing-- {
			text += strings.Repeat(" ", MissingIndentation(text)) + "}\n"
		}
	}

	if open, closed := strings.Count(text, "{"), strings.Count(text, "}"); open != closed {
		issues = append(issues, Issue{
			Kind:    IssueUnpairedBraces,
			Message: fmt.Sprintf("not paired amount of braces (%d open, %d closed), consider using '// FINISH:' instead of '// END:'", open, closed),
		})
	}
	return text, issues
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
