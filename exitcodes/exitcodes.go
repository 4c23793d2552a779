// Package exitcodes defines the exit codes of robot-results.
package exitcodes

const (
	Success     = 0 // Report written, regardless of test results
	Failure     = 1 // Outputs could not be loaded, combined or exported
	ConfigError = 2 // Invalid inputs, nothing was read
)
