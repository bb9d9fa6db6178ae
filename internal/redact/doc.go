// Package redact removes secrets from warnings before a report is shared.
//
// Compiler diagnostics quote the offending source line, so a warning about
// an unused credential variable carries the credential itself. Detection
// uses regex heuristics covering common secret shapes: API keys, JWTs,
// private keys, AWS keys, bearer tokens, connection strings with passwords,
// and provider tokens (GitHub, Slack, sk- keys).
//
// Path-based redaction is also supported: warnings in files whose paths
// match configured glob patterns have their whole source excerpt replaced.
package redact
