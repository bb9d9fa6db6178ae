package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/warndiff/internal/review"
	"github.com/dshills/warndiff/internal/warning"
)

func sampleReport() *review.Report {
	return &review.Report{
		Tool:    review.ToolName,
		Version: "1.0",
		RunID:   "run-1",
		Repo:    review.RepoInfo{Root: "/tmp/repo", Branch: "main"},
		Inputs: review.InputInfo{
			Baseline:  "base.log",
			Candidate: "new.log",
			Upstream:  "origin/main",
			Filtered:  true,
		},
		Summary: review.Summary{
			Baseline:    4,
			Candidate:   5,
			Stats:       review.Stats{Exact: 2, Content: 1, Message: 0, Kept: 2},
			FilteredOut: 1,
			Novel:       1,
		},
		Warnings: []warning.Warning{
			{
				Path:         "src/io.c",
				Line:         42,
				Column:       7,
				Message:      "unused variable 'n' [-Wunused-variable]",
				Continuation: []string{"   42 |   int n;", "      |       ^"},
			},
		},
		Timing: review.Timing{ParseMs: 3, DiffMs: 1, TotalMs: 5},
	}
}

func emptyReport() *review.Report {
	r := sampleReport()
	r.Summary.Novel = 0
	r.Warnings = nil
	return r
}

func TestGetWriter(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"sarif", false},
		{"markdown", false},
		{"md", false},
		{"log", false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		w, err := GetWriter(tt.format, false)
		if (err != nil) != tt.wantErr {
			t.Errorf("GetWriter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err == nil && w == nil {
			t.Errorf("GetWriter(%q) returned nil writer", tt.format)
		}
	}
}

func TestTextWriter_NoWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "base.log -> new.log") {
		t.Errorf("Output should name both inputs:\n%s", out)
	}
	if !strings.Contains(out, "New warnings: 0") {
		t.Error("Output should show zero new warnings")
	}
	if !strings.Contains(out, "No new warnings.") {
		t.Error("Output should say no new warnings")
	}
}

func TestTextWriter_WithWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"src/io.c:42:7: warning: unused variable 'n' [-Wunused-variable]",
		"   42 |   int n;",
		"Suppressed: 3 (exact 2, content 1, message 0)",
		"Outside changed lines: 1",
		"Changed lines since: origin/main",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Output should not contain ANSI escapes when color is off")
	}
}

func TestTextWriter_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{Color: true}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("Output should contain ANSI escapes when color is on")
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded["tool"] != "warndiff" {
		t.Errorf("tool = %v", decoded["tool"])
	}
	summary := decoded["summary"].(map[string]any)
	stats := summary["stats"].(map[string]any)
	if stats["exact"] != float64(2) {
		t.Errorf("summary.stats.exact = %v, want 2", stats["exact"])
	}
	ws := decoded["warnings"].([]any)
	if len(ws) != 1 {
		t.Fatalf("warnings len = %d, want 1", len(ws))
	}
	first := ws[0].(map[string]any)
	if first["path"] != "src/io.c" || first["line"] != float64(42) {
		t.Errorf("warning = %v", first)
	}
	if _, ok := decoded["Decisions"]; ok {
		t.Error("trace data should not be serialized")
	}
}

func TestJSONWriter_EmptyWarningsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), `"warnings": []`) {
		t.Errorf("expected empty warnings array:\n%s", buf.String())
	}
}

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	if len(sarif.Runs) != 1 {
		t.Fatalf("Runs count = %d, want 1", len(sarif.Runs))
	}
	if sarif.Runs[0].Results == nil || len(sarif.Runs[0].Results) != 0 {
		t.Errorf("Results = %v, want empty array", sarif.Runs[0].Results)
	}
}

func TestSARIFWriter_WithWarnings(t *testing.T) {
	report := sampleReport()
	report.Warnings = append(report.Warnings,
		warning.Warning{Path: "src/io.c", Line: 50, Column: 1, Message: "unused variable 'm' [-Wunused-variable]"},
		warning.Warning{Path: "gen.c", Line: 0, Column: 0, Message: "file has no content"},
	)

	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}

	run := sarif.Runs[0]
	if run.Tool.Driver.Name != "warndiff" {
		t.Errorf("Driver name = %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 3 {
		t.Fatalf("Results = %d, want 3", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("Rules = %d, want 2 (deduplicated)", len(run.Tool.Driver.Rules))
	}

	first := run.Results[0]
	if first.RuleID != "-Wunused-variable" {
		t.Errorf("RuleID = %q", first.RuleID)
	}
	if first.Level != "warning" {
		t.Errorf("Level = %q", first.Level)
	}
	region := first.Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 42 || region.StartColumn != 7 {
		t.Errorf("Region = %+v, want line 42 column 7", region)
	}

	last := run.Results[2]
	if last.RuleID != defaultRuleID {
		t.Errorf("RuleID = %q, want %q", last.RuleID, defaultRuleID)
	}
	if last.Locations[0].PhysicalLocation.Region != nil {
		t.Error("line 0 should produce no region")
	}
}

func TestArtifactURI(t *testing.T) {
	tests := []struct {
		path, root, want string
	}{
		{"/home/dev/repo/src/a.c", "/home/dev/repo", "src/a.c"},
		{"src/a.c", "/home/dev/repo", "src/a.c"},
		{"/usr/include/stdio.h", "/home/dev/repo", "file:///usr/include/stdio.h"},
		{"/home/dev/repo/src/a.c", "", "file:///home/dev/repo/src/a.c"},
		{`C:\work\repo\src\a.c`, `C:\work\repo`, "src/a.c"},
		{`C:\sdk\inc\w.h`, `C:\work\repo`, "file:///C:/sdk/inc/w.h"},
		{"/home/dev/repo/my file.c", "/home/dev/repo", "my%20file.c"},
	}
	for _, tt := range tests {
		if got := artifactURI(tt.path, tt.root); got != tt.want {
			t.Errorf("artifactURI(%q, %q) = %q, want %q", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestSARIFWriter_RelativeArtifactPaths(t *testing.T) {
	report := sampleReport()
	report.Warnings = []warning.Warning{
		{Path: "/tmp/repo/src/io.c", Line: 3, Column: 1, Message: "m"},
		{Path: "/usr/include/stdio.h", Line: 9, Column: 1, Message: "m"},
	}

	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	results := sarif.Runs[0].Results
	if got := results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "src/io.c" {
		t.Errorf("URI = %q, want src/io.c", got)
	}
	if got := results[1].Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "file:///usr/include/stdio.h" {
		t.Errorf("URI = %q, want file:///usr/include/stdio.h", got)
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## warndiff",
		"| Matched exactly | 2 |",
		"| **New** | **1** |",
		"<summary><code>src/io.c</code> (1)</summary>",
		"**`src/io.c:42:7`**",
		"```c\n   42 |   int n;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No new warnings.") {
		t.Error("Output should say no new warnings")
	}
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&LogWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	want := "src/io.c:42:7: warning: unused variable 'n' [-Wunused-variable]\n   42 |   int n;\n      |       ^\n"
	if buf.String() != want {
		t.Errorf("log output = %q, want %q", buf.String(), want)
	}

	parsed := warning.Parse(buf.String())
	if len(parsed) != 1 || parsed[0].Line != 42 {
		t.Errorf("log output does not parse back: %+v", parsed)
	}
}

func TestWriteLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novel.log")
	if err := WriteLogFile(path, sampleReport().Warnings); err != nil {
		t.Fatalf("WriteLogFile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "src/io.c:42:7: warning: ") {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteReport(sampleReport(), "json", path, true); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("report file should be valid JSON")
	}
}

func TestWriteReport_BadFormat(t *testing.T) {
	if err := WriteReport(sampleReport(), "yaml", "", false); err == nil {
		t.Error("expected error for unsupported format")
	}
}
