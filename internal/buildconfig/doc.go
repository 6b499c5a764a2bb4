// Package buildconfig renders planned branch builds into a build-server configuration document.
// The default template emits CruiseControl.NET AutoBranchBuild blocks; any text/template may replace it.
package buildconfig
