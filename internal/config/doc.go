// Package config loads, normalizes, and validates chime configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and watcher need: the ntfy server connection, topic generation
// parameters, subscription transport, archive location, Redis bridge, and
// metrics endpoint.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical transports, and clear validation errors.
package config
