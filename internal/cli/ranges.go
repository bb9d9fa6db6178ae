package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/config"
	"github.com/dshills/warndiff/internal/gitctx"
)

var flagRangesFormat string

var rangesCmd = &cobra.Command{
	Use:   "ranges [ref]",
	Short: "Print the lines changed since ref (default: the branch's upstream)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(flagRepo, buildOverrides())
		if err != nil {
			return err
		}
		ref := cfg.Upstream
		if len(args) == 1 {
			ref = args[0]
		}

		changed, err := gitctx.ChangedSince(flagRepo, ref, buildDiffOpts(cfg))
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		switch flagRangesFormat {
		case "json":
			data, err := json.MarshalIndent(struct {
				Upstream string          `json:"upstream"`
				Base     string          `json:"base"`
				Root     string          `json:"root"`
				Files    *changes.Ranges `json:"files"`
			}{changed.Upstream, changed.Base, changed.Repo.Root, changed.Ranges}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
		case "text":
			fmt.Fprintf(os.Stdout, "Changed since %s (merge base %s)\n", changed.Upstream, shortSHA(changed.Base))
			fmt.Fprint(os.Stdout, formatRanges(changed.Ranges))
		default:
			return fmt.Errorf("unsupported ranges format: %s (use text or json)", flagRangesFormat)
		}
		return nil
	},
}

// formatRanges renders one "path: a-b, c" line per file. Lines are inclusive.
func formatRanges(r *changes.Ranges) string {
	var b strings.Builder
	for _, path := range r.Files() {
		ivs, _ := r.Intervals(path)
		parts := make([]string, len(ivs))
		for i, iv := range ivs {
			if iv.Count == 1 {
				parts[i] = fmt.Sprintf("%d", iv.Start)
			} else {
				parts[i] = fmt.Sprintf("%d-%d", iv.Start, iv.End()-1)
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", path, strings.Join(parts, ", "))
	}
	return b.String()
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func init() {
	rangesCmd.Flags().StringVar(&flagRangesFormat, "format", "text", "Output format (text, json)")
	rangesCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository directory (default: current directory)")
	rangesCmd.Flags().BoolVar(&flagUntracked, "untracked", false, "Treat untracked files as entirely changed")
	rangesCmd.Flags().StringVar(&flagPaths, "paths", "", "Limit to these globs (comma-separated)")
	rangesCmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude these globs (comma-separated)")
}
