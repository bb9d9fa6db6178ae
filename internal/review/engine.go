package review

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/warning"
)

// ToolName is reported in every Report.
const ToolName = "warndiff"

// ParseCache stores parsed logs keyed by their raw content.
type ParseCache interface {
	Get(content string) ([]warning.Warning, bool)
	Put(content string, warnings []warning.Warning) error
}

// Source is one side of a comparison: either a log file to parse or an
// already parsed warning set.
type Source struct {
	// Name labels the source in the report. Defaults to Path.
	Name     string
	Path     string
	Warnings []warning.Warning
	// Parsed marks Warnings as authoritative even when empty.
	Parsed bool
}

func (s Source) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// Input configures one pipeline run.
type Input struct {
	Baseline  Source
	Candidate Source

	// Ranges restricts the result to changed lines; nil disables filtering.
	Ranges   *changes.Ranges
	RepoRoot string
	Repo     RepoInfo
	Upstream string

	Options Options
	Rules   *Rules
	Cache   ParseCache
	Version string
}

// Run parses both sources, suppresses baseline warnings and filters the
// survivors to changed lines.
func Run(ctx context.Context, in Input) (*Report, error) {
	startTime := time.Now()

	var baseline, candidate []warning.Warning
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ws, err := load(gctx, in.Baseline, in.Cache)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		baseline = ws
		return nil
	})
	g.Go(func() error {
		ws, err := load(gctx, in.Candidate, in.Cache)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		candidate = ws
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	parseMs := time.Since(startTime).Milliseconds()

	candidate, ignored := in.Rules.Filter(candidate, in.RepoRoot)

	diffStart := time.Now()
	res := DiffWithOptions(baseline, candidate, in.Options)

	filter := changes.Filter{Ranges: in.Ranges, RepoRoot: in.RepoRoot}
	novel, verdicts := filter.Apply(res.Novel)
	diffMs := time.Since(diffStart).Milliseconds()

	return &Report{
		Tool:    ToolName,
		Version: in.Version,
		RunID:   uuid.New().String(),
		Repo:    in.Repo,
		Inputs: InputInfo{
			Baseline:  in.Baseline.label(),
			Candidate: in.Candidate.label(),
			Upstream:  in.Upstream,
			Filtered:  in.Ranges != nil,
		},
		Summary: Summary{
			Baseline:    len(baseline),
			Candidate:   len(candidate),
			Ignored:     ignored,
			Stats:       res.Stats,
			FilteredOut: len(res.Novel) - len(novel),
			Novel:       len(novel),
		},
		Warnings:  novel,
		Decisions: res.Decisions,
		Verdicts:  verdicts,
		Timing: Timing{
			ParseMs: parseMs,
			DiffMs:  diffMs,
			TotalMs: time.Since(startTime).Milliseconds(),
		},
	}, nil
}

func load(ctx context.Context, src Source, cache ParseCache) ([]warning.Warning, error) {
	if src.Parsed || src.Warnings != nil {
		return src.Warnings, nil
	}
	if src.Path == "" {
		return nil, fmt.Errorf("no log path given")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &warning.ReadError{Path: src.Path, Err: err}
	}
	content := string(data)
	if cache != nil {
		if ws, ok := cache.Get(content); ok {
			return ws, nil
		}
	}
	ws := warning.Parse(content)
	if cache != nil {
		// A failed cache write only costs a reparse next time.
		_ = cache.Put(content, ws)
	}
	return ws, nil
}
