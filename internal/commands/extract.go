package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"automator/internal/backend/googletasks"
	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/inbound"
	"automator/internal/logging"
	"automator/internal/output"
	"automator/internal/service"
)

// maxInput bounds what extract reads from stdin.
const maxInput = 1 << 20

// ActivityPublisher files activities in an external task list.
type ActivityPublisher interface {
	Publish(ctx context.Context, listName string, activities []service.Activity) (int, error)
}

// GooglePublisher builds the Google Tasks sink from the OAuth files in cfg.Dir.
var GooglePublisher = func(ctx context.Context, cfg *config.Config) (ActivityPublisher, error) {
	return googletasks.New(ctx, cfg)
}

func init() {
	Register(&ExtractCmd{})
}

// ExtractCmd turns a free-form message into dated activities.
type ExtractCmd struct {
	json     bool
	publish  bool
	google   string
	telegram bool
	in       io.Reader
}

// SetInput replaces stdin (for testing).
func (c *ExtractCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetPublish sets the publish flag (for testing).
func (c *ExtractCmd) SetPublish(publish bool) {
	c.publish = publish
}

// SetGoogle sets the Google Tasks list name (for testing).
func (c *ExtractCmd) SetGoogle(list string) {
	c.google = list
}

// SetTelegram sets the telegram flag (for testing).
func (c *ExtractCmd) SetTelegram(telegram bool) {
	c.telegram = telegram
}

// SetJSON sets the json flag (for testing).
func (c *ExtractCmd) SetJSON(json bool) {
	c.json = json
}

func (c *ExtractCmd) Name() string      { return "extract" }
func (c *ExtractCmd) Aliases() []string { return nil }
func (c *ExtractCmd) Synopsis() string  { return "Extract dated activities from a message" }
func (c *ExtractCmd) Usage() string {
	return "automator extract [--json] [--publish] [--google <list-name>] [--telegram] [<message...>]"
}
func (c *ExtractCmd) Requires() Requirement { return NeedsService }

func (c *ExtractCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.json, "json", false, "")
	fs.BoolVar(&c.publish, "publish", false, "")
	fs.StringVar(&c.google, "google", "", "")
	fs.BoolVar(&c.telegram, "telegram", false, "")
}

func (c *ExtractCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Model.APIKey == "" {
		fmt.Fprintln(errOut, "error: no model configured (set GOOGLE_API_KEY or model.api_key)")
		return exitcode.AuthError
	}
	if c.publish && cfg.OwnerID == "" {
		fmt.Fprintln(errOut, "error: not registered (run: automator register <email>)")
		return exitcode.AuthError
	}

	input, code := c.readInput(args, errOut)
	if code != exitcode.Success {
		return code
	}

	var activities []service.Activity
	if c.telegram {
		log, err := logging.New(cfg.Debug)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		defer log.Sync()

		var valid bool
		activities, valid = inbound.NewHandler(svc, log).Handle(ctx, []byte(input))
		if !valid {
			fmt.Fprintln(errOut, "error: invalid telegram update (run with --debug for details)")
			return exitcode.UserError
		}
	} else {
		if strings.TrimSpace(input) == "" {
			fmt.Fprintln(errOut, "error: message required")
			return exitcode.UserError
		}
		loc, err := cfg.Location()
		if err != nil {
			fmt.Fprintf(errOut, "error: config error: %v\n", err)
			return exitcode.AuthError
		}
		activities = svc.Extract(ctx, input, now().In(loc))
	}

	if c.json {
		if err := output.FormatActivitiesJSON(out, activities); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	} else {
		for _, a := range activities {
			output.FormatActivity(out, a)
		}
		if len(activities) == 0 && !cfg.Quiet {
			fmt.Fprintln(errOut, "no activities found")
		}
	}

	if c.publish && len(activities) > 0 {
		n := svc.PublishActivities(ctx, cfg.OwnerID, activities)
		if n < len(activities) {
			fmt.Fprintf(errOut, "error: backend error: published %d of %d activities\n", n, len(activities))
			return exitcode.BackendError
		}
		if !cfg.Quiet {
			fmt.Fprintf(errOut, "published %d to %s\n", n, service.MyDayList)
		}
	}

	if c.google != "" && len(activities) > 0 {
		return c.publishGoogle(ctx, cfg, activities, errOut)
	}
	return exitcode.Success
}

func (c *ExtractCmd) publishGoogle(ctx context.Context, cfg *config.Config, activities []service.Activity, errOut io.Writer) int {
	pub, err := GooglePublisher(ctx, cfg)
	if err == nil {
		var n int
		n, err = pub.Publish(ctx, c.google, activities)
		if err == nil {
			if !cfg.Quiet {
				fmt.Fprintf(errOut, "published %d to Google Tasks: %s\n", n, c.google)
			}
			return exitcode.Success
		}
		if n > 0 {
			fmt.Fprintf(errOut, "published %d of %d to Google Tasks\n", n, len(activities))
		}
	}
	if errors.Is(err, googletasks.ErrAuth) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// readInput joins the message args, or reads stdin when there are none or the
// only arg is "-".
func (c *ExtractCmd) readInput(args []string, errOut io.Writer) (string, int) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), exitcode.Success
	}
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(io.LimitReader(in, maxInput+1))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read input: %v\n", err)
		return "", exitcode.UserError
	}
	if len(data) > maxInput {
		fmt.Fprintf(errOut, "error: input too large (max %d bytes)\n", maxInput)
		return "", exitcode.UserError
	}
	return string(data), exitcode.Success
}
