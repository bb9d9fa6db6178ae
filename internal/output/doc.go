// Package output renders a [review.Report] for people and tools.
//
// Supported formats: text (compiler-style locations, optionally colored),
// json, sarif (SARIF 2.1.0, one result per new warning), markdown
// (PR-comment friendly) and log (the surviving warnings re-emitted in the
// compiler log format).
package output
