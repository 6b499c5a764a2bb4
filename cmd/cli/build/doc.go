// Package build provides the build-config command, which renders a
// CruiseControl.NET configuration scheduling every recently active branch.
package build
