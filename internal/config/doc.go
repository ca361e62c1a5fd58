// Package config loads, normalizes, and validates segmatic configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SEGMATIC_TEMP_DIR. The Config type centralizes every knob the CLI needs,
// so segmentation thresholds, worker sizing, and tool overrides are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical values, and clear validation errors.
package config
