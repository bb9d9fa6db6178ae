// Package cache provides a file-based cache of parsed warning logs.
//
// Entries are keyed by a SHA-256 hash of the raw log text and hold the
// parsed warnings as msgpack along with a creation timestamp and a TTL (in
// seconds). Writes go to a temp file that is renamed into place. Expired
// entries and entries from an older schema are treated as misses.
//
// The default cache directory is $XDG_CACHE_HOME/warndiff (or the
// OS-appropriate equivalent).
package cache
