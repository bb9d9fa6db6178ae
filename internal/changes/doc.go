// Package changes models the lines touched by a code change and decides
// whether a warning falls inside them.
//
// [Ranges] maps repository-relative paths to half-open line intervals on the
// new side of a diff. [ParseUnifiedDiff] builds one from zero-context
// unified diff output. [Filter] normalizes warning paths against the
// repository root and applies the map; a Filter with no Ranges includes
// everything.
package changes
