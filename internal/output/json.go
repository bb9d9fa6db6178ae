package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/warndiff/internal/review"
	"github.com/dshills/warndiff/internal/warning"
)

// JSONWriter outputs the full report as JSON. An empty result is encoded
// as an empty warnings array.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *review.Report) error {
	out := *report
	if out.Warnings == nil {
		out.Warnings = []warning.Warning{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
