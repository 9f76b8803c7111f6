// Package config loads, normalizes, and validates the asset tool configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and paths relative to the config file), reads TOML files, and
// honours environment fallbacks such as YT_DLP_BIN, WGET_BIN and
// TINALS_MANIFEST_URL. The Config type locates the item store, the physical
// cache tree and its logical prefix, the external tools, and local state.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clean logical prefixes.
package config
