package review

import "github.com/dshills/warndiff/internal/warning"

// Options disables the coarser suppression tiers. The zero value runs the
// full cascade.
type Options struct {
	SkipContent bool
	SkipMessage bool
}

// Index holds the baseline signatures for membership tests.
type Index struct {
	exact   map[string]struct{}
	content map[string]struct{}
	message map[string]struct{}
}

// NewIndex builds the three signature sets from baseline.
func NewIndex(baseline []warning.Warning) *Index {
	ix := &Index{
		exact:   make(map[string]struct{}, len(baseline)),
		content: make(map[string]struct{}, len(baseline)),
		message: make(map[string]struct{}, len(baseline)),
	}
	for _, w := range baseline {
		ix.exact[w.ExactKey()] = struct{}{}
		ix.content[w.ContentSignature()] = struct{}{}
		ix.message[w.MessageSignature()] = struct{}{}
	}
	return ix
}

// Classify returns the first tier whose signature of w is present in the
// baseline, or TierKept.
func (ix *Index) Classify(w warning.Warning, opts Options) Tier {
	if _, ok := ix.exact[w.ExactKey()]; ok {
		return TierExact
	}
	if !opts.SkipContent {
		if _, ok := ix.content[w.ContentSignature()]; ok {
			return TierContent
		}
	}
	if !opts.SkipMessage {
		if _, ok := ix.message[w.MessageSignature()]; ok {
			return TierMessage
		}
	}
	return TierKept
}

// DiffResult is the outcome of comparing a candidate set to a baseline.
type DiffResult struct {
	Novel     []warning.Warning
	Stats     Stats
	Decisions []Decision
}

// Diff returns the candidate warnings not present in baseline, in candidate
// order, using the full cascade.
func Diff(baseline, candidate []warning.Warning) DiffResult {
	return DiffWithOptions(baseline, candidate, Options{})
}

// DiffWithOptions is Diff with tiers optionally disabled.
func DiffWithOptions(baseline, candidate []warning.Warning, opts Options) DiffResult {
	ix := NewIndex(baseline)
	res := DiffResult{
		Novel:     make([]warning.Warning, 0, len(candidate)),
		Decisions: make([]Decision, 0, len(candidate)),
	}
	for _, w := range candidate {
		tier := ix.Classify(w, opts)
		res.Stats.add(tier)
		res.Decisions = append(res.Decisions, Decision{Warning: w, Tier: tier})
		if tier == TierKept {
			res.Novel = append(res.Novel, w)
		}
	}
	return res
}
