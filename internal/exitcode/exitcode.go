// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error: bad args, not found, not owned, refused.
	UserError = 1

	// AuthError indicates a config error, a missing registration or missing OAuth files.
	AuthError = 2

	// BackendError indicates a store, model or Google API failure.
	BackendError = 3
)
