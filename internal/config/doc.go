// Package config loads and validates host configuration from defaults, an
// optional YAML file, and GRIDSTONE_ prefixed environment variables, in that
// order of precedence. Each API host calls Load once at startup and treats a
// failure as fatal; the rest of the codebase receives plain structs and never
// touches the environment directly.
package config
