// Package config loads, normalizes, and validates fxapply configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files and checks the extra effect declarations before they reach the
// catalog.
package config
