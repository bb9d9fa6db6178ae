package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/warndiff/internal/config"
	"github.com/dshills/warndiff/internal/gitctx"
	"github.com/dshills/warndiff/internal/store"
	"github.com/dshills/warndiff/internal/warning"
)

var (
	flagBaselineCommit string
	flagBaselineJSON   bool
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage stored baselines",
	Long:  "Store parsed warning logs under a name so later runs can diff against them with --baseline-name.",
}

func withBaselines(fn func(ctx context.Context, repo *store.BaselineRepo) error) error {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return err
	}
	repo, closeDB, err := openBaselines(cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(context.Background(), repo)
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <name> <log>",
	Short: "Parse a log and store it as a named baseline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := warning.ParseFile(args[1])
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		commit := flagBaselineCommit
		if commit == "" {
			if meta, err := gitctx.GetRepoMeta(""); err == nil {
				commit = meta.Head
			}
		}
		return withBaselines(func(ctx context.Context, repo *store.BaselineRepo) error {
			b := store.Baseline{Name: args[0], Source: args[1], Commit: commit, Warnings: ws}
			if err := repo.Save(ctx, b); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Saved baseline %q (%d warnings)\n", args[0], len(ws))
			return nil
		})
	},
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBaselines(func(ctx context.Context, repo *store.BaselineRepo) error {
			list, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if flagBaselineJSON {
				if list == nil {
					list = []store.Baseline{}
				}
				data, err := json.MarshalIndent(list, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}
			if len(list) == 0 {
				fmt.Fprintln(os.Stdout, "No baselines stored.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tWARNINGS\tCOMMIT\tUPDATED\tSOURCE")
			for _, b := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					b.Name, b.Count, shortSHA(b.Commit), b.UpdatedAt.Format("2006-01-02 15:04"), b.Source)
			}
			return tw.Flush()
		})
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored baseline in log format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBaselines(func(ctx context.Context, repo *store.BaselineRepo) error {
			b, err := repo.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if flagBaselineJSON {
				data, err := json.MarshalIndent(b, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}
			return warning.WriteLog(os.Stdout, b.Warnings)
		})
	},
}

var baselineRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"delete"},
	Short:   "Delete a stored baseline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBaselines(func(ctx context.Context, repo *store.BaselineRepo) error {
			if err := repo.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted baseline %q\n", args[0])
			return nil
		})
	},
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineListCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineRmCmd)

	baselineCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Baseline database path")
	baselineSaveCmd.Flags().StringVar(&flagBaselineCommit, "commit", "", "Commit the log was built from (default: HEAD)")
	baselineListCmd.Flags().BoolVar(&flagBaselineJSON, "json", false, "Print as JSON")
	baselineShowCmd.Flags().BoolVar(&flagBaselineJSON, "json", false, "Print as JSON")
}
