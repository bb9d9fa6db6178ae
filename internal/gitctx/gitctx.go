package gitctx

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/warndiff/internal/changes"
)

// ErrNoUpstream is returned when the current branch tracks no upstream.
var ErrNoUpstream = errors.New("current branch has no upstream")

// DiffOptions controls how changed ranges are gathered.
type DiffOptions struct {
	Include []string
	Exclude []string
	// Untracked marks every line of untracked, non-ignored files as changed.
	Untracked bool
}

// DiffResult holds the changed ranges and the refs they were computed from.
// Ranges.Files lists the changed files in diff order.
type DiffResult struct {
	Upstream string
	Base     string
	Ranges   *changes.Ranges
	Repo     RepoMeta
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git. dir may be empty for
// the current directory.
func GetRepoMeta(dir string) (RepoMeta, error) {
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// UpstreamRef returns the upstream of the current branch, e.g. "origin/main".
func UpstreamRef(dir string) (string, error) {
	out, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUpstream, err)
	}
	ref := strings.TrimSpace(out)
	if ref == "" {
		return "", ErrNoUpstream
	}
	return ref, nil
}

// MergeBase returns the best common ancestor of ref and HEAD.
func MergeBase(dir, ref string) (string, error) {
	out, err := gitOutput(dir, "merge-base", ref, "HEAD")
	if err != nil {
		return "", fmt.Errorf("git merge-base %s HEAD: %w", ref, err)
	}
	return strings.TrimSpace(out), nil
}

// ChangedSince computes the lines changed between the merge base of ref and
// HEAD and the working tree, with zero context. An empty ref means the
// current branch's upstream.
func ChangedSince(dir, ref string, opts DiffOptions) (DiffResult, error) {
	meta, err := GetRepoMeta(dir)
	if err != nil {
		return DiffResult{}, err
	}
	if ref == "" {
		ref, err = UpstreamRef(meta.Root)
		if err != nil {
			return DiffResult{}, err
		}
	}
	base, err := MergeBase(meta.Root, ref)
	if err != nil {
		return DiffResult{}, err
	}

	args := append([]string{"diff", "-U0", "--no-color", "--no-ext-diff",
		"--src-prefix=a/", "--dst-prefix=b/", base}, pathspec(opts)...)
	diff, err := gitOutput(meta.Root, args...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff %s: %w", base, err)
	}

	if len(opts.Exclude) > 0 {
		diff = filterExcluded(diff, opts.Exclude)
	}

	ranges := changes.ParseUnifiedDiff(diff)
	if opts.Untracked {
		untracked, err := untrackedFiles(meta.Root, opts)
		if err != nil {
			return DiffResult{}, err
		}
		for _, path := range untracked {
			n, err := countLines(filepath.Join(meta.Root, path))
			if err != nil {
				continue // unreadable files have no lines to report on
			}
			ranges.Add(path, changes.Interval{Start: 1, Count: n})
		}
	}

	return DiffResult{
		Upstream: ref,
		Base:     base,
		Ranges:   ranges,
		Repo:     meta,
	}, nil
}

func pathspec(opts DiffOptions) []string {
	args := []string{"--"}
	for _, p := range opts.Include {
		if p != "**/*" {
			args = append(args, p)
		}
	}
	return args
}

func untrackedFiles(root string, opts DiffOptions) ([]string, error) {
	args := append([]string{"ls-files", "--others", "--exclude-standard"}, pathspec(opts)...)
	out, err := gitOutput(root, args...)
	if err != nil {
		return nil, fmt.Errorf("git ls-files --others: %w", err)
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || MatchesAny(line, opts.Exclude) {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}

func filterExcluded(diff string, excludes []string) string {
	sections := splitDiffSections(diff)
	var kept []string
	for _, section := range sections {
		path := extractPathFromSection(section)
		if path == "" || !MatchesAny(path, excludes) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

func splitDiffSections(diff string) []string {
	var sections []string
	lines := strings.Split(diff, "\n")
	var current strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

func extractPathFromSection(section string) string {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
	}
	return ""
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// "**/x" also matches x against the base name, and "dir/**" matches
// anything below dir.
func MatchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
		if dir := strings.TrimSuffix(pattern, "/**"); dir != pattern && strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
