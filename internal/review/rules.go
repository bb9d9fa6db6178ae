package review

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/gitctx"
	"github.com/dshills/warndiff/internal/warning"
)

// Rules lists candidate warnings to drop before comparison, loaded from
// --rules.
type Rules struct {
	IgnoreMessages []string `json:"ignoreMessages,omitempty"`
	IgnorePaths    []string `json:"ignorePaths,omitempty"`

	messages []*regexp.Regexp
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	if err := rules.compile(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *Rules) compile() error {
	r.messages = r.messages[:0]
	for _, expr := range r.IgnoreMessages {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid ignoreMessages pattern %q: %w", expr, err)
		}
		r.messages = append(r.messages, re)
	}
	return nil
}

// Ignores reports whether w matches any rule. Path globs are matched
// against the path relative to repoRoot, so "third_party/**" also covers
// absolute paths inside the repository.
func (r *Rules) Ignores(w warning.Warning, repoRoot string) bool {
	if r == nil {
		return false
	}
	if len(r.messages) != len(r.IgnoreMessages) {
		if err := r.compile(); err != nil {
			return false
		}
	}
	for _, re := range r.messages {
		if re.MatchString(w.Message) {
			return true
		}
	}
	return gitctx.MatchesAny(changes.RelPath(w.Path, repoRoot), r.IgnorePaths)
}

// Filter drops ignored warnings, preserving order, and returns how many
// were dropped.
func (r *Rules) Filter(warnings []warning.Warning, repoRoot string) ([]warning.Warning, int) {
	if r == nil || (len(r.IgnoreMessages) == 0 && len(r.IgnorePaths) == 0) {
		return warnings, 0
	}
	kept := make([]warning.Warning, 0, len(warnings))
	for _, w := range warnings {
		if !r.Ignores(w, repoRoot) {
			kept = append(kept, w)
		}
	}
	return kept, len(warnings) - len(kept)
}
