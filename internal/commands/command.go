// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"automator/internal/config"
	"automator/internal/service"
)

// Requirement says what the dispatcher must prepare before a command runs.
type Requirement int

const (
	// NeedsNothing commands run without a store: help, version, login, logout.
	NeedsNothing Requirement = iota

	// NeedsService commands get a service but may run before registration.
	NeedsService

	// NeedsOwner commands get a service and act as the registered owner.
	NeedsOwner
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the command needs from the dispatcher.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided; cfg.OwnerID is set for NeedsOwner commands.
	// svc is nil for NeedsNothing commands.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}
