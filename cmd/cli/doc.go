// Package cli constructs the svntools command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader and zap logging
// around the merged, unmerged, drift, build-config and export commands.
package cli
