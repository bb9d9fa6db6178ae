package changes

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseUnifiedDiff builds Ranges from the new-file side of a unified diff.
// Hunk headers without a count default to 1 and zero counts are raised to
// 1. Deleted files are skipped.
func ParseUnifiedDiff(diff string) *Ranges {
	r := NewRanges()
	var (
		current string
		prev    string
		body    int // hunk body lines still to skip
	)
	for _, line := range strings.Split(diff, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if body > 0 && line != "" && strings.ContainsRune("+- ", rune(line[0])) {
			body--
			prev = line
			continue
		}
		switch {
		case strings.HasPrefix(line, "diff "):
			current = ""
			body = 0
		case strings.HasPrefix(line, "+++ ") && strings.HasPrefix(prev, "--- "):
			current = newSidePath(strings.TrimPrefix(line, "+++ "))
		default:
			m := hunkHeader.FindStringSubmatch(line)
			if m == nil {
				break
			}
			oldCount := countOrOne(m[1])
			start, _ := strconv.Atoi(m[2])
			newCount := countOrOne(m[3])
			body = oldCount + newCount
			if current != "" {
				r.Add(current, NewInterval(start, newCount))
			}
		}
		prev = line
	}
	return r
}

func countOrOne(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// newSidePath turns the "+++ " operand into a repository-relative path, or
// "" for /dev/null.
func newSidePath(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	if strings.HasPrefix(s, `"`) {
		if unq, err := strconv.Unquote(s); err == nil {
			s = unq
		}
	}
	if s == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(s, "b/")
}
