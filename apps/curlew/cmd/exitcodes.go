package cmd

// Exit codes for the curlew runner
const (
	// ExitSuccess indicates every entry passed
	ExitSuccess = 0

	// ExitRunFailure indicates one or more entries failed
	ExitRunFailure = 1

	// ExitParseError indicates an unreadable or unparsable input file
	ExitParseError = 2

	// ExitConfigError indicates invalid options or flags
	ExitConfigError = 3

	// ExitRuntimeError indicates a failure outside the entries themselves
	ExitRuntimeError = 4
)
