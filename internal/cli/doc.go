// Package cli wires together the Cobra command tree for the warndiff binary.
//
// It defines the root command and all subcommands (diff, parse, ranges,
// baseline, config, cache, version), binds flags, reads configuration,
// invokes the comparison pipeline, and returns deterministic exit codes for
// CI gating.
package cli
