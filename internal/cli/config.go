package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/warndiff/internal/cache"
	"github.com/dshills/warndiff/internal/config"
	"github.com/dshills/warndiff/internal/gitctx"
	"github.com/dshills/warndiff/internal/output"
)

var flagConfigRepo bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage warndiff configuration",
	Long: `Settings are merged in this order, later sources winning:
defaults, the user config.json, the repository's .warndiff.toml,
WARNDIFF_* environment variables, then command-line flags.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a user config file, or a .warndiff.toml with --repo",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfigRepo {
			meta, err := gitctx.GetRepoMeta("")
			if err != nil {
				return err
			}
			path, err := config.WriteRepoFile(meta.Root, config.Default())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Created %s\n", path)
			return nil
		}

		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}
		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Created %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the user config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "format" && !slices.Contains(output.Formats, value) && value != "md" {
			return fmt.Errorf("unsupported format %q (want one of %v)", value, output.Formats)
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if err := config.SetField(&cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", key, value)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		if path, ok, err := config.FindRepoFile(""); err == nil && ok {
			fmt.Fprintf(os.Stderr, "Using %s\n", path)
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where configuration, cache and baselines live",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		userFile, err := config.ConfigPath()
		if err != nil {
			return err
		}
		repoFile, ok, err := config.FindRepoFile("")
		if err != nil {
			return err
		}
		if !ok {
			repoFile = "(none)"
		}
		cacheDir := cfg.Cache.Dir
		if cacheDir == "" {
			if cacheDir, err = cache.DefaultDir(); err != nil {
				return err
			}
		}
		storePath, err := cfg.StorePath()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "user config\t%s\n", userFile)
		fmt.Fprintf(tw, "repo config\t%s\n", repoFile)
		fmt.Fprintf(tw, "cache\t%s\n", cacheDir)
		fmt.Fprintf(tw, "baselines\t%s\n", storePath)
		return tw.Flush()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagConfigRepo, "repo", false, "Write .warndiff.toml at the repository root instead")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
