// Package config loads, normalizes, and validates chronoreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHRONOREEL_INPUT_DIR. The Config type centralizes every knob the pipeline
// needs: input and output locations, frame geometry, caption style, encoder
// parameters, and logging.
//
// Always obtain settings through this package so downstream components receive
// sanitized paths, parsed colours and time zones, and clear validation errors.
package config
