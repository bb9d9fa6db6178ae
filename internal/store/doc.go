// Package store keeps named warning baselines in a local SQLite database.
//
// The schema is managed by embedded golang-migrate migrations that run on
// [Open]. A saved baseline can stand in for a baseline log file on a later
// diff.
package store
