// Package config loads, normalizes, and validates mixdown configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MIXDOWN_NTFY_TOPIC. The Config type centralizes every knob the CLI needs,
// allowing staging directories, tool overrides, and output naming to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
