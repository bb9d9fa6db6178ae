package warning

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	locationPrefix = regexp.MustCompile(`^[^\s|]+?:\d+:\d+:`)
	gutterPrefix   = regexp.MustCompile(`^\s*\d+ \| `)
)

// ExactKey identifies the same warning at the same place.
func (w Warning) ExactKey() string {
	return fmt.Sprintf("%s:%d:%d:%s", w.Path, w.Line, w.Column, w.Message)
}

// ContentSignature combines the trimmed message with every normalized
// continuation line. It does not depend on path, line or column, so a
// warning keeps its signature when its file is moved or its line drifts.
func (w Warning) ContentSignature() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(w.Message))
	for _, line := range w.Continuation {
		b.WriteByte('\n')
		b.WriteString(NormalizeContinuation(line))
	}
	return b.String()
}

// MessageSignature is the trimmed message alone.
func (w Warning) MessageSignature() string {
	return strings.TrimSpace(w.Message)
}

// NormalizeContinuation strips a leading "path:line:col:" prefix, then a
// leading "<digits> | " snippet gutter, then surrounding whitespace.
func NormalizeContinuation(line string) string {
	line = locationPrefix.ReplaceAllString(line, "")
	line = gutterPrefix.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
