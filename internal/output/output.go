package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/warndiff/internal/review"
	"github.com/dshills/warndiff/internal/warning"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Formats lists the accepted --format values.
var Formats = []string{"text", "json", "sarif", "markdown", "log"}

// GetWriter returns a writer for the specified format. color only affects
// the text format.
func GetWriter(format string, color bool) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{Color: color}, nil
	case "json":
		return &JSONWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "log":
		return &LogWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *review.Report, format, outPath string, color bool) error {
	writer, err := GetWriter(format, color && outPath == "")
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// WriteLogFile writes warnings to path in the compiler log format, so the
// file can be fed back in as a baseline or candidate.
func WriteLogFile(path string, ws []warning.Warning) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	if err := warning.WriteLog(f, ws); err != nil {
		f.Close()
		return fmt.Errorf("writing log file: %w", err)
	}
	return f.Close()
}

// LogWriter emits the surviving warnings in the compiler log format.
type LogWriter struct{}

func (l *LogWriter) Write(w io.Writer, report *review.Report) error {
	return warning.WriteLog(w, report.Warnings)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
