// Package config loads, validates, and normalizes lessonlink configuration.
//
// Configuration is TOML with three resolution steps: an explicit --config
// path, ~/.config/lessonlink/config.toml, then ./lessonlink.toml. Missing
// files fall back to repository defaults so the daemon can start with zero
// configuration for local use.
package config
