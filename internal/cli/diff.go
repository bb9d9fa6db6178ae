package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/warndiff/internal/cache"
	"github.com/dshills/warndiff/internal/config"
	"github.com/dshills/warndiff/internal/gitctx"
	"github.com/dshills/warndiff/internal/logging"
	"github.com/dshills/warndiff/internal/output"
	"github.com/dshills/warndiff/internal/redact"
	"github.com/dshills/warndiff/internal/review"
	"github.com/dshills/warndiff/internal/store"
	"github.com/dshills/warndiff/internal/warning"
)

// diff flags
var (
	flagUpstream     string
	flagNoFilter     bool
	flagRepo         string
	flagFormat       string
	flagOut          string
	flagOutLog       string
	flagFailOnNew    bool
	flagStrict       bool
	flagNoContent    bool
	flagTrace        bool
	flagNoCache      bool
	flagUntracked    bool
	flagRules        string
	flagPaths        string
	flagExclude      string
	flagBaselineName string
	flagStore        string
	flagNoRedact     bool
)

func addDiffFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagUpstream, "upstream", "", "Compare changed lines against this ref (default: the branch's upstream)")
	cmd.Flags().BoolVar(&flagNoFilter, "no-filter", false, "Report new warnings on all lines, not only changed ones")
	cmd.Flags().StringVar(&flagRepo, "repo", "", "Repository directory (default: current directory)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, sarif, markdown, log)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagOutLog, "out-log", "", "Also write the new warnings to this file in log format")
	cmd.Flags().BoolVar(&flagFailOnNew, "fail-on-new", false, "Exit with status 1 when new warnings remain")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Disable message-only matching")
	cmd.Flags().BoolVar(&flagNoContent, "no-content", false, "Disable content matching")
	cmd.Flags().BoolVar(&flagTrace, "trace", false, "Log every classification and filter decision to stderr")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the parsed-log cache")
	cmd.Flags().BoolVar(&flagUntracked, "untracked", false, "Treat untracked files as entirely changed")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file with warnings to ignore")
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Limit changed-line detection to these globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file globs from changed-line detection (comma-separated)")
	cmd.Flags().StringVar(&flagBaselineName, "baseline-name", "", "Use a stored baseline instead of a baseline log")
	cmd.Flags().StringVar(&flagStore, "store", "", "Baseline database path")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Do not redact secrets in source excerpts")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagUpstream != "" {
		m["upstream"] = flagUpstream
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutLog != "" {
		m["outLog"] = flagOutLog
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagStore != "" {
		m["store"] = flagStore
	}
	for key, set := range map[string]bool{
		"noFilter":  flagNoFilter,
		"failOnNew": flagFailOnNew,
		"strict":    flagStrict,
		"noContent": flagNoContent,
		"trace":     flagTrace,
		"noCache":   flagNoCache,
		"untracked": flagUntracked,
		"noRedact":  flagNoRedact,
	} {
		if set {
			m[key] = "true"
		}
	}
	return m
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
		Untracked: cfg.Untracked,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func diffArgs(cmd *cobra.Command, args []string) error {
	if flagBaselineName != "" {
		if len(args) != 1 {
			return fmt.Errorf("with --baseline-name, pass only the candidate log (got %d args)", len(args))
		}
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("accepts <baseline.log> <candidate.log>, received %d args", len(args))
	}
	return nil
}

var diffCmd = &cobra.Command{
	Use:   "diff <baseline.log> <candidate.log>",
	Short: "Report candidate warnings that are new relative to a baseline",
	Long: "Parse both logs, drop candidate warnings that match a baseline warning exactly, " +
		"by message and source content, or by message alone, then keep only those on lines " +
		"changed since the upstream branch.",
	Args: diffArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(flagRepo, buildOverrides())
		if err != nil {
			return err
		}
		if _, err := output.GetWriter(cfg.Format, false); err != nil {
			return err
		}
		log, err := logging.New(cfg.Trace)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		runDiff(cmd.Context(), args, cfg, log)
		return nil
	},
}

func runDiff(ctx context.Context, args []string, cfg config.Config, log *zap.SugaredLogger) {
	if ctx == nil {
		ctx = context.Background()
	}

	in := review.Input{
		Options: review.Options{
			SkipContent: !cfg.Tiers.Content,
			SkipMessage: !cfg.Tiers.Message,
		},
		Version: version,
	}

	if flagBaselineName != "" {
		src, err := storedBaseline(ctx, cfg, flagBaselineName)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return
		}
		in.Baseline = src
		in.Candidate = review.Source{Path: args[0]}
	} else {
		in.Baseline = review.Source{Path: args[0]}
		in.Candidate = review.Source{Path: args[1]}
	}

	if cfg.FilterChanged {
		changed, err := gitctx.ChangedSince(flagRepo, cfg.Upstream, buildDiffOpts(cfg))
		if err != nil {
			hint := "use --no-filter to report new warnings on all lines"
			if errors.Is(err, gitctx.ErrNoUpstream) {
				hint = "set --upstream or use --no-filter"
			}
			fail(ExitRuntimeError, "changed lines unavailable: %v (%s)", err, hint)
			return
		}
		in.Ranges = changed.Ranges
		in.RepoRoot = changed.Repo.Root
		in.Upstream = changed.Upstream
		in.Repo = repoInfo(changed.Repo)
		log.Debugw("changed ranges", "upstream", changed.Upstream, "base", changed.Base, "files", changed.Ranges.Len())
	} else if meta, err := gitctx.GetRepoMeta(flagRepo); err == nil {
		in.Repo = repoInfo(meta)
		in.RepoRoot = meta.Root
	}

	rules, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		fail(ExitRuntimeError, "loading rules: %v", err)
		return
	}
	in.Rules = rules

	if pc := openCache(cfg, log); pc != nil {
		in.Cache = pc
	}

	report, err := review.Run(ctx, in)
	if err != nil {
		var readErr *warning.ReadError
		if errors.As(err, &readErr) {
			fail(ExitRuntimeError, "cannot read log %s: %v", readErr.Path, readErr.Err)
			return
		}
		fail(ExitRuntimeError, "%v", err)
		return
	}

	if cfg.Trace {
		traceReport(log, report)
	}
	log.Debugw("diff complete",
		"run", report.RunID,
		"exact", report.Summary.Stats.Exact,
		"content", report.Summary.Stats.Content,
		"message", report.Summary.Stats.Message,
		"kept", report.Summary.Stats.Kept,
		"filteredOut", report.Summary.FilteredOut,
		"novel", report.Summary.Novel,
	)

	// The log format and --out-log reproduce the compiler output verbatim.
	logWarnings := report.Warnings
	if cfg.Privacy.RedactSecrets && cfg.Format != "log" {
		var n int
		report.Warnings, n = redact.Warnings(report.Warnings, cfg.Privacy.RedactPaths, report.Repo.Root)
		if n > 0 {
			log.Debugw("redacted warnings", "count", n)
		}
	}

	if err := output.WriteReport(report, cfg.Format, flagOut, useColor(flagColor, os.Stdout)); err != nil {
		fail(ExitRuntimeError, "writing output: %v", err)
		return
	}
	if cfg.OutLog != "" {
		if err := output.WriteLogFile(cfg.OutLog, logWarnings); err != nil {
			fail(ExitRuntimeError, "%v", err)
			return
		}
	}

	if cfg.FailOnNew && report.HasNovel() {
		exitCode = ExitNewWarnings
	}
}

// traceReport logs each candidate's tier and, for kept candidates, the
// range filter verdict. Verdicts line up with kept decisions in order.
func traceReport(log *zap.SugaredLogger, report *review.Report) {
	v := 0
	for _, d := range report.Decisions {
		w := d.Warning
		log.Debugw("classified",
			"tier", d.Tier.String(),
			"file", w.Path,
			"line", w.Line,
			"column", w.Column,
			"message", w.Message,
		)
		if d.Tier != review.TierKept || v >= len(report.Verdicts) {
			continue
		}
		verdict := report.Verdicts[v]
		v++
		log.Debugw("range filter",
			"file", verdict.RelPath,
			"line", w.Line,
			"included", verdict.Included,
			"reason", string(verdict.Reason),
			"matched", verdict.MatchedPath,
		)
	}
}

func repoInfo(meta gitctx.RepoMeta) review.RepoInfo {
	return review.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
}

// openCache returns nil when caching is disabled or the cache cannot be opened.
func openCache(cfg config.Config, log *zap.SugaredLogger) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warnw("parse cache unavailable", "error", err)
		return nil
	}
	return c
}

func storedBaseline(ctx context.Context, cfg config.Config, name string) (review.Source, error) {
	repo, closeDB, err := openBaselines(cfg)
	if err != nil {
		return review.Source{}, err
	}
	defer closeDB()

	b, err := repo.Load(ctx, name)
	if err != nil {
		return review.Source{}, err
	}
	return review.Source{Name: "baseline:" + b.Name, Warnings: b.Warnings, Parsed: true}, nil
}

func openBaselines(cfg config.Config) (*store.BaselineRepo, func(), error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening baseline store: %w", err)
	}
	return store.NewBaselineRepo(db), func() { _ = db.Close() }, nil
}

func init() {
	addDiffFlags(diffCmd)
}
