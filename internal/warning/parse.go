package warning

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// headerPattern matches "path:line:column: warning: message". The greedy
// path group lets paths contain colons; the message must contain at least
// one non-space character.
var headerPattern = regexp.MustCompile(`^(.+):(\d{1,9}):(\d{1,9}): warning: (.*\S.*)$`)

// ReadError reports a log that could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading warning log %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseFile reads and parses the log at path. An empty or header-less file
// yields no warnings and no error.
func ParseFile(path string) ([]Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return Parse(string(data)), nil
}

// ParseReader parses a log from r. name is used only for error messages.
func ParseReader(name string, r io.Reader) ([]Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ReadError{Path: name, Err: err}
	}
	return Parse(string(data)), nil
}

// Parse splits text into warnings. Lines before the first header are
// dropped; every other non-header line is attached verbatim to the
// preceding warning.
func Parse(text string) []Warning {
	var (
		warnings []Warning
		current  *Warning
	)
	for _, line := range splitLines(text) {
		if w, ok := ParseHeader(line); ok {
			if current != nil {
				warnings = append(warnings, *current)
			}
			current = &w
			continue
		}
		if current == nil {
			continue
		}
		current.Continuation = append(current.Continuation, line)
	}
	if current != nil {
		warnings = append(warnings, *current)
	}
	return warnings
}

// ParseHeader reports whether line is a warning header and, if so, returns
// the warning it starts with no continuation lines.
func ParseHeader(line string) (Warning, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Warning{}, false
	}
	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return Warning{}, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return Warning{}, false
	}
	return Warning{
		Path:    m[1],
		Line:    lineNo,
		Column:  col,
		Message: strings.TrimSpace(m[4]),
	}, true
}

// splitLines splits on "\n" and "\r\n". A trailing newline does not produce
// an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
