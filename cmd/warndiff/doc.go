// Warndiff reports compiler warnings that are new relative to a baseline
// build log.
//
// Warnings present in the baseline are suppressed even when they moved,
// and the survivors are limited to lines changed since the branch's
// upstream. Exit codes are stable for CI gating.
//
// Usage:
//
//	warndiff diff main.log branch.log             # new warnings on changed lines
//	warndiff diff main.log branch.log --no-filter # new warnings anywhere
//	warndiff diff branch.log --baseline-name main # compare against a stored baseline
//	warndiff baseline save main main.log          # store a baseline log
//	warndiff ranges origin/main                   # show changed line ranges
//	warndiff parse build.log --format json        # inspect parsed warnings
package main
