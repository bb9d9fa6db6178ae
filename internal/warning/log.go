package warning

import (
	"bufio"
	"io"
	"strings"
)

// WriteLog serializes warnings in order: each header line followed by its
// continuation lines, every line newline-terminated.
func WriteLog(w io.Writer, warnings []Warning) error {
	bw := bufio.NewWriter(w)
	for _, wn := range warnings {
		if _, err := bw.WriteString(wn.Header() + "\n"); err != nil {
			return err
		}
		for _, line := range wn.Continuation {
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FormatLog returns the WriteLog output as a string.
func FormatLog(warnings []Warning) string {
	var b strings.Builder
	_ = WriteLog(&b, warnings)
	return b.String()
}
