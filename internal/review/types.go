package review

import (
	"fmt"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/warning"
)

// Tier names the signature that suppressed a candidate, or TierKept.
type Tier int

const (
	TierKept Tier = iota
	TierExact
	TierContent
	TierMessage
)

func (t Tier) String() string {
	switch t {
	case TierKept:
		return "kept"
	case TierExact:
		return "exact"
	case TierContent:
		return "content"
	case TierMessage:
		return "message"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Stats counts candidates per tier. The four counters always sum to the
// number of candidates.
type Stats struct {
	Exact   int `json:"exact"`
	Content int `json:"content"`
	Message int `json:"message"`
	Kept    int `json:"kept"`
}

// Total returns the number of classified candidates.
func (s Stats) Total() int {
	return s.Exact + s.Content + s.Message + s.Kept
}

// Suppressed returns the number of candidates matched by any tier.
func (s Stats) Suppressed() int {
	return s.Exact + s.Content + s.Message
}

func (s *Stats) add(t Tier) {
	switch t {
	case TierExact:
		s.Exact++
	case TierContent:
		s.Content++
	case TierMessage:
		s.Message++
	default:
		s.Kept++
	}
}

// Decision is the classification of one candidate warning.
type Decision struct {
	Warning warning.Warning
	Tier    Tier
}

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// InputInfo describes what was compared.
type InputInfo struct {
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`
	Upstream  string `json:"upstream,omitempty"`
	Filtered  bool   `json:"filtered"`
}

// Summary provides an overview of a run.
type Summary struct {
	Baseline    int   `json:"baseline"`
	Candidate   int   `json:"candidate"`
	Ignored     int   `json:"ignored"`
	Stats       Stats `json:"stats"`
	FilteredOut int   `json:"filteredOut"`
	Novel       int   `json:"novel"`
}

// Timing contains performance metrics.
type Timing struct {
	ParseMs int64 `json:"parseMs"`
	DiffMs  int64 `json:"diffMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string            `json:"tool"`
	Version  string            `json:"version"`
	RunID    string            `json:"runId"`
	Repo     RepoInfo          `json:"repo"`
	Inputs   InputInfo         `json:"inputs"`
	Summary  Summary           `json:"summary"`
	Warnings []warning.Warning `json:"warnings"`
	Timing   Timing            `json:"timing"`

	// Decisions and Verdicts are kept for tracing; they are not serialized.
	Decisions []Decision        `json:"-"`
	Verdicts  []changes.Verdict `json:"-"`
}

// HasNovel reports whether any warning survived suppression and filtering.
func (r *Report) HasNovel() bool {
	return len(r.Warnings) > 0
}
