// Package utils exposes the plumbing shared by svntools commands.
//
// ConfigurationLoader layers embedded defaults, an optional YAML file and
// SVNTOOLS_ prefixed environment variables through Viper, decoding duration
// strings for the build cadence table. LoggerFactory builds the zap loggers
// used for diagnostics and console output.
package utils
