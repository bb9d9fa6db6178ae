// Package gitctx answers the version-control questions warndiff needs:
// which upstream the current branch tracks, and which lines changed between
// that upstream's merge base and the working tree.
//
// It shells out to git. Diffs are taken with zero context and explicit
// a/ b/ prefixes so that user configuration cannot change their shape, and
// are turned into a [changes.Ranges] map. Include/exclude glob patterns
// restrict the files considered.
package gitctx
