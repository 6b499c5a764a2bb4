// Package flags provides helpers for binding the repository flags shared by svntools commands.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// DestinationFlagName exposes the shared destination location flag name.
	DestinationFlagName = "destination"
	// DestinationFlagUsage describes the destination location flag.
	DestinationFlagUsage = "URL of the line branches are merged into, e.g. svn://host/repo/trunk"
	// BranchesFlagName exposes the shared branches parent flag name.
	BranchesFlagName = "branches"
	// BranchesFlagUsage describes the branches parent flag.
	BranchesFlagUsage = "URL of the directory holding the branches, e.g. svn://host/repo/branches"
	// UsernameFlagName exposes the shared repository username flag name.
	UsernameFlagName = "username"
	// UsernameFlagUsage describes the repository username flag.
	UsernameFlagUsage = "Repository username"
	// PasswordFlagName exposes the shared repository password flag name.
	PasswordFlagName = "password"
	// PasswordFlagUsage describes the repository password flag.
	PasswordFlagUsage = "Repository password"
	// OutputFlagName exposes the shared output file flag name.
	OutputFlagName = "output"
	// OutputFlagShorthand provides the shorthand for the output flag.
	OutputFlagShorthand = "o"
	// OutputFlagUsage describes the output file flag.
	OutputFlagUsage = "Write the result to this file instead of standard output"
)

// LocationFlagDefinitions selects which repository location flags a command accepts.
type LocationFlagDefinitions struct {
	Destination bool
	Branches    bool
}

// BindLocationFlags attaches the selected repository location flags to command.
func BindLocationFlags(command *cobra.Command, definitions LocationFlagDefinitions) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	if definitions.Destination && flagSet.Lookup(DestinationFlagName) == nil {
		flagSet.String(DestinationFlagName, "", DestinationFlagUsage)
	}
	if definitions.Branches && flagSet.Lookup(BranchesFlagName) == nil {
		flagSet.String(BranchesFlagName, "", BranchesFlagUsage)
	}
}

// BindCredentialFlags attaches the repository credential flags as persistent flags of command.
func BindCredentialFlags(command *cobra.Command) {
	if command == nil {
		return
	}
	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(UsernameFlagName) == nil {
		persistentFlagSet.String(UsernameFlagName, "", UsernameFlagUsage)
	}
	if persistentFlagSet.Lookup(PasswordFlagName) == nil {
		persistentFlagSet.String(PasswordFlagName, "", PasswordFlagUsage)
	}
}

// BindOutputFlag attaches the output file flag to command.
func BindOutputFlag(command *cobra.Command) {
	if command == nil {
		return
	}
	if command.Flags().Lookup(OutputFlagName) == nil {
		command.Flags().StringP(OutputFlagName, OutputFlagShorthand, "", OutputFlagUsage)
	}
}

// ResolveString returns the trimmed flag value when the flag was set on the command line and the trimmed
// configured value otherwise.
func ResolveString(command *cobra.Command, flagName string, configuredValue string) string {
	if command == nil {
		return strings.TrimSpace(configuredValue)
	}
	flag := command.Flags().Lookup(flagName)
	if flag == nil || !flag.Changed {
		return strings.TrimSpace(configuredValue)
	}
	return strings.TrimSpace(flag.Value.String())
}

// ResolveInt returns the flag value when the flag was set on the command line and configuredValue otherwise.
func ResolveInt(command *cobra.Command, flagName string, configuredValue int) int {
	if command == nil || !command.Flags().Changed(flagName) {
		return configuredValue
	}
	flagValue, lookupError := command.Flags().GetInt(flagName)
	if lookupError != nil {
		return configuredValue
	}
	return flagValue
}
