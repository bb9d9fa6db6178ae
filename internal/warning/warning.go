package warning

import "fmt"

// Warning is one diagnostic occurrence parsed from a log. Values are never
// modified after parsing.
type Warning struct {
	Path         string   `json:"path" msgpack:"path"`
	Line         int      `json:"line" msgpack:"line"`
	Column       int      `json:"column" msgpack:"column"`
	Message      string   `json:"message" msgpack:"message"`
	Continuation []string `json:"continuation,omitempty" msgpack:"continuation"`
}

// Header renders the warning's header line without a trailing newline.
func (w Warning) Header() string {
	return fmt.Sprintf("%s:%d:%d: warning: %s", w.Path, w.Line, w.Column, w.Message)
}

// Location renders "path:line:column".
func (w Warning) Location() string {
	return fmt.Sprintf("%s:%d:%d", w.Path, w.Line, w.Column)
}
