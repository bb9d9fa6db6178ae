// Package review suppresses known warnings and assembles the result of a
// warndiff run.
//
// [Diff] compares a candidate warning set against a baseline using a
// cascade of progressively coarser signatures (exact location, message plus
// normalized context, message alone). The first tier that finds the
// candidate in the baseline suppresses it; a candidate no tier matches is
// kept. Every decision is returned so hosts can trace classification
// without the engine logging anything itself.
//
// [Run] is the pipeline: it loads both logs (concurrently, optionally
// through a parse cache), diffs them, restricts the survivors to changed
// lines and returns a [Report].
package review
