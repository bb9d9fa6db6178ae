package output

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/warndiff/internal/review"
)

// TextWriter outputs a human-readable report. Warnings are printed in the
// compiler's own header format so editors can jump to them.
type TextWriter struct {
	Color bool
}

type textStyle struct {
	loc     *color.Color
	label   *color.Color
	heading *color.Color
	ok      *color.Color
}

func newTextStyle(enabled bool) textStyle {
	s := textStyle{
		loc:     color.New(color.Bold),
		label:   color.New(color.FgMagenta, color.Bold),
		heading: color.New(color.FgYellow, color.Bold),
		ok:      color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{s.loc, s.label, s.heading, s.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	style := newTextStyle(t.Color)
	sum := report.Summary

	ew.printf("warndiff: %s -> %s\n", report.Inputs.Baseline, report.Inputs.Candidate)
	if report.Inputs.Filtered {
		if report.Inputs.Upstream != "" {
			ew.printf("Changed lines since: %s\n", report.Inputs.Upstream)
		} else {
			ew.println("Changed lines: filtered")
		}
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Baseline: %d  Candidate: %d", sum.Baseline, sum.Candidate)
	if sum.Ignored > 0 {
		ew.printf("  Ignored by rules: %d", sum.Ignored)
	}
	ew.println("")
	ew.printf("Suppressed: %d (exact %d, content %d, message %d)\n",
		sum.Stats.Suppressed(), sum.Stats.Exact, sum.Stats.Content, sum.Stats.Message)
	if report.Inputs.Filtered {
		ew.printf("Outside changed lines: %d\n", sum.FilteredOut)
	}
	ew.println(style.heading.Sprintf("New warnings: %d", sum.Novel))
	ew.println(strings.Repeat("─", 60))

	if len(report.Warnings) == 0 {
		ew.println(style.ok.Sprint("\nNo new warnings."))
		return ew.err
	}

	for _, wn := range report.Warnings {
		ew.printf("\n%s: %s %s\n", style.loc.Sprint(wn.Location()), style.label.Sprint("warning:"), wn.Message)
		for _, c := range wn.Continuation {
			ew.println(c)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (parse: %dms, diff: %dms)\n",
		report.Timing.TotalMs, report.Timing.ParseMs, report.Timing.DiffMs)

	return ew.err
}
