package changes

import (
	"strings"

	"github.com/dshills/warndiff/internal/warning"
)

// Reason explains a filter verdict.
type Reason string

const (
	ReasonNoFilter    Reason = "no-filter"
	ReasonInRange     Reason = "in-range"
	ReasonOutOfRange  Reason = "out-of-range"
	ReasonUnknownFile Reason = "unknown-file"
)

// Verdict is the outcome of filtering one location.
type Verdict struct {
	Included bool
	Reason   Reason
	RelPath  string
	// MatchedPath is the map key used, which differs from RelPath when the
	// prefix fallback matched.
	MatchedPath string
}

// Filter restricts warnings to changed lines. A nil Ranges disables
// filtering.
type Filter struct {
	Ranges   *Ranges
	RepoRoot string
}

// IsIncluded reports whether path:line should be kept.
func IsIncluded(path string, line int, ranges *Ranges, repoRoot string) bool {
	return Filter{Ranges: ranges, RepoRoot: repoRoot}.IsIncluded(path, line)
}

// IsIncluded reports whether path:line should be kept.
func (f Filter) IsIncluded(path string, line int) bool {
	return f.Explain(path, line).Included
}

// Explain returns the verdict for path:line together with its reason.
func (f Filter) Explain(path string, line int) Verdict {
	if f.Ranges == nil {
		return Verdict{Included: true, Reason: ReasonNoFilter, RelPath: path}
	}
	rel := RelPath(path, f.RepoRoot)
	key, ivs, ok := f.Ranges.Lookup(rel)
	if !ok {
		return Verdict{Reason: ReasonUnknownFile, RelPath: rel}
	}
	for _, iv := range ivs {
		if iv.Contains(line) {
			return Verdict{Included: true, Reason: ReasonInRange, RelPath: rel, MatchedPath: key}
		}
	}
	return Verdict{Reason: ReasonOutOfRange, RelPath: rel, MatchedPath: key}
}

// Apply keeps the warnings inside the changed ranges, preserving order, and
// returns the verdict for every input warning.
func (f Filter) Apply(warnings []warning.Warning) ([]warning.Warning, []Verdict) {
	kept := make([]warning.Warning, 0, len(warnings))
	verdicts := make([]Verdict, len(warnings))
	for i, w := range warnings {
		v := f.Explain(w.Path, w.Line)
		verdicts[i] = v
		if v.Included {
			kept = append(kept, w)
		}
	}
	return kept, verdicts
}

// RelPath strips repoRoot from path when path lies under it. Separators are
// compared in slash form; a path outside the root is returned unchanged.
func RelPath(path, repoRoot string) string {
	if repoRoot == "" {
		return path
	}
	p := toSlash(path)
	root := strings.TrimSuffix(toSlash(repoRoot), "/")
	if root == "" {
		return path
	}
	if strings.HasPrefix(p, root+"/") {
		return p[len(root)+1:]
	}
	return path
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
