// Package config loads, normalizes, and validates Sentinel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SENTINEL_DATA_DIR environment
// fallback. The Config type centralizes the data directory, branch labels,
// agent roster, column synonyms, and logging knobs that the CLI and the
// registry need, so every process in a deployment agrees on where the shared
// ledger lives and how snapshot headers are interpreted.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical branch labels, and clear validation errors.
package config
