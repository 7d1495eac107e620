// Package exitcodes contains the constants representing possible retrace exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for retrace.
// Values should be between 0 and 125 so they survive the shell unmangled.
type ExitCode uint8

// list of exit codes used by retrace
const (
	InvalidConfig         ExitCode = 104
	CannotStartRESTAPI    ExitCode = 105
	SourceMapsUnavailable ExitCode = 106
	ExternalAbort         ExitCode = 107
	GoPanic               ExitCode = 108
)
