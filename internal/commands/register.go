package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd creates the user every other command acts as and records it in config.yaml.
type RegisterCmd struct {
	password string
	name     string
}

// SetPassword sets the password (for testing).
func (c *RegisterCmd) SetPassword(password string) {
	c.password = password
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create the local user" }
func (c *RegisterCmd) Usage() string {
	return "automator register --password <password> [--name <name>] <email>"
}
func (c *RegisterCmd) Requires() Requirement { return NeedsService }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.name, "name", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	email := args[0]

	password := c.password
	if password == "" {
		password = os.Getenv("AUTOMATOR_PASSWORD")
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required (--password or AUTOMATOR_PASSWORD)")
		return exitcode.UserError
	}

	id, registered := svc.Register(ctx, service.NewUser{Email: email, Password: password, Name: c.name})
	if !registered {
		fmt.Fprintf(errOut, "error: registration failed (invalid or already registered email): %s\n", email)
		return exitcode.UserError
	}

	cfg.SetOwner(id)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered %s\n", strings.ToLower(strings.TrimSpace(email)))
	}
	return exitcode.Success
}
