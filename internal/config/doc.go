// Package config defines the settings of a single download run and helpers
// to load them from flags and environment, validate them and render them as YAML.
//
// There is no configuration file: every value has a built-in default and
// may be overridden per run.
package config
