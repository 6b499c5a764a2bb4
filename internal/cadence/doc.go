// Package cadence decides how often each branch is rebuilt from the age of its last revision
// and plans the resulting builds across build queues.
package cadence
