// Package report renders branch classifications and merge drift as text, YAML, JSON or TOML.
package report
