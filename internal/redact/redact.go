package redact

import (
	"regexp"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/gitctx"
	"github.com/dshills/warndiff/internal/warning"
)

const placeholder = "[REDACTED]"

// pathPlaceholder replaces the source excerpt of a warning whose file matches
// a redaction path pattern.
const pathPlaceholder = placeholder + " (source excerpt redacted by path policy)"

type secretPattern struct {
	kind string
	re   *regexp.Regexp
}

// secretPatterns are regex heuristics for credentials that show up in
// source excerpts, e.g. a warning about an unused `api_key` variable.
var secretPatterns = []secretPattern{
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"sk-key", regexp.MustCompile(`sk-(ant-)?[A-Za-z0-9_-]{20,}`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
	{"conn-string", regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]+@`)},
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	out, _ := scan(text)
	return out
}

func scan(text string) (string, []string) {
	var kinds []string
	for _, p := range secretPatterns {
		if !p.re.MatchString(text) {
			continue
		}
		kinds = append(kinds, p.kind)
		text = p.re.ReplaceAllLiteralString(text, placeholder)
	}
	return text, kinds
}

// ShouldRedactPath reports whether path matches any redaction pattern.
func ShouldRedactPath(path string, patterns []string) bool {
	return gitctx.MatchesAny(path, patterns)
}

// Warning returns a copy of w with secrets removed from its message and
// continuation lines. When the path, taken relative to repoRoot, matches
// redactPaths the whole excerpt is replaced. Location fields are never changed, and the input is not mutated.
func Warning(w warning.Warning, redactPaths []string, repoRoot string) (warning.Warning, []string) {
	var kinds []string
	out := w
	out.Message, kinds = scan(w.Message)

	if len(w.Continuation) == 0 {
		return out, kinds
	}
	if ShouldRedactPath(changes.RelPath(w.Path, repoRoot), redactPaths) {
		out.Continuation = []string{pathPlaceholder}
		return out, append(kinds, "path")
	}
	out.Continuation = make([]string, len(w.Continuation))
	for i, line := range w.Continuation {
		var found []string
		out.Continuation[i], found = scan(line)
		kinds = append(kinds, found...)
	}
	return out, kinds
}

// Warnings applies Warning to every element and returns the number of
// warnings that changed.
func Warnings(ws []warning.Warning, redactPaths []string, repoRoot string) ([]warning.Warning, int) {
	if ws == nil {
		return nil, 0
	}
	out := make([]warning.Warning, len(ws))
	changed := 0
	for i, w := range ws {
		var kinds []string
		out[i], kinds = Warning(w, redactPaths, repoRoot)
		if len(kinds) > 0 {
			changed++
		}
	}
	return out, changed
}
