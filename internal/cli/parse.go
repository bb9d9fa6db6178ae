package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/warndiff/internal/warning"
)

var flagParseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <log>",
	Short: "Parse a warning log and print the warnings found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := warning.ParseFile(args[0])
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		switch flagParseFormat {
		case "log":
			return warning.WriteLog(os.Stdout, ws)
		case "json":
			if ws == nil {
				ws = []warning.Warning{}
			}
			data, err := json.MarshalIndent(ws, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		case "count":
			fmt.Fprintln(os.Stdout, len(ws))
			return nil
		default:
			return fmt.Errorf("unsupported parse format: %s (use log, json or count)", flagParseFormat)
		}
	},
}

func init() {
	parseCmd.Flags().StringVar(&flagParseFormat, "format", "log", "Output format (log, json, count)")
}
