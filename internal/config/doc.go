// Package config loads and merges warndiff configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (WARNDIFF_UPSTREAM, WARNDIFF_FORMAT, WARNDIFF_TRACE, etc.)
//  3. Repository file (.warndiff.toml, found by walking up from the working directory)
//  4. User config file ($XDG_CONFIG_HOME/warndiff/config.json)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the user config
// file, and [SetField] to update a single key.
package config
