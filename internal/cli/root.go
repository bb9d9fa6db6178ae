package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitNewWarnings  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var flagColor string

var rootCmd = &cobra.Command{
	Use:   "warndiff",
	Short: "Report only the compiler warnings a change introduced",
	Long: "warndiff compares a candidate warning log against a baseline, suppresses warnings " +
		"that already existed (even when they moved), and limits the result to lines changed " +
		"since the upstream branch.",
	SilenceUsage: true,
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(rangesCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print warndiff version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "warndiff version %s\n", version)
	},
}

// useColor resolves --color against the terminal state of f.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return term.IsTerminal(int(f.Fd()))
	}
}

// fail reports err on stderr and records code as the exit code.
func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = code
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Colorize text output (auto, on, off)")
}
