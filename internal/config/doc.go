// Package config loads, normalizes, and validates the TOML configuration
// for ddrpub.
//
// Lookup order: an explicit --config path, then ~/.config/ddrpub/config.toml,
// then ./ddrpub.toml. Missing files resolve to defaults so the tool runs with
// flags alone. All path values accept ~ expansion and are resolved to
// absolute paths during normalization.
package config
