package output

import (
	"io"
	"path"
	"strings"

	"github.com/dshills/warndiff/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	sum := report.Summary

	ew.printf("## warndiff\n\n")

	ew.printf("| Stage | Count |\n")
	ew.printf("|-------|-------|\n")
	ew.printf("| Baseline warnings | %d |\n", sum.Baseline)
	ew.printf("| Candidate warnings | %d |\n", sum.Candidate)
	if sum.Ignored > 0 {
		ew.printf("| Ignored by rules | %d |\n", sum.Ignored)
	}
	ew.printf("| Matched exactly | %d |\n", sum.Stats.Exact)
	ew.printf("| Matched by content | %d |\n", sum.Stats.Content)
	ew.printf("| Matched by message | %d |\n", sum.Stats.Message)
	if report.Inputs.Filtered {
		ew.printf("| Outside changed lines | %d |\n", sum.FilteredOut)
	}
	ew.printf("| **New** | **%d** |\n\n", sum.Novel)

	if len(report.Warnings) == 0 {
		ew.println("No new warnings. :white_check_mark:")
		return ew.err
	}

	// Collapsible section per file, in first-seen order.
	var files []string
	byFile := make(map[string][]int)
	for i, wn := range report.Warnings {
		if _, ok := byFile[wn.Path]; !ok {
			files = append(files, wn.Path)
		}
		byFile[wn.Path] = append(byFile[wn.Path], i)
	}

	for _, file := range files {
		idx := byFile[file]
		ew.printf("<details>\n<summary><code>%s</code> (%d)</summary>\n\n", file, len(idx))
		for _, i := range idx {
			wn := report.Warnings[i]
			ew.printf("**`%s`** %s\n\n", wn.Location(), wn.Message)
			if len(wn.Continuation) > 0 {
				ew.printf("```%s\n%s\n```\n\n", inferLang(file), strings.Join(wn.Continuation, "\n"))
			}
		}
		ew.printf("</details>\n\n")
	}

	ew.printf("*Compared in %dms (parse: %dms, diff: %dms)*\n",
		report.Timing.TotalMs, report.Timing.ParseMs, report.Timing.DiffMs)

	return ew.err
}

func inferLang(file string) string {
	langMap := map[string]string{
		".c":   "c",
		".h":   "c",
		".cc":  "cpp",
		".cpp": "cpp",
		".cxx": "cpp",
		".hh":  "cpp",
		".hpp": "cpp",
		".m":   "objectivec",
		".mm":  "objectivec",
		".rs":  "rust",
		".go":  "go",
		".f90": "fortran",
	}
	return langMap[strings.ToLower(path.Ext(file))]
}
