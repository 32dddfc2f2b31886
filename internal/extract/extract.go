// Package extract turns a free-form message into short, dated activities using a
// generative text model.
package extract

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"automator/internal/service"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 30 * time.Second

// MaxWords is the longest activity label kept.
const MaxWords = 3

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Engine runs the extraction pipeline.
type Engine struct {
	gen     Generator
	log     *zap.Logger
	timeout time.Duration
	loc     *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLocation sets the zone "today" is computed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets the logger. Failures are logged at warn level.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an Engine around gen.
func New(gen Generator, opts ...Option) *Engine {
	e := &Engine{
		gen:     gen,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type result struct {
	text string
	err  error
}

// Extract returns the activities found in message, dated relative to reference.
// Any failure yields an empty slice; the cause is logged.
func (e *Engine) Extract(ctx context.Context, message string, reference time.Time) []service.Activity {
	message = strings.TrimSpace(message)
	if message == "" {
		return []service.Activity{}
	}
	if e.gen == nil {
		e.log.Warn("no model configured")
		return []service.Activity{}
	}

	today := Day(reference, e.loc)
	prompt, err := BuildPrompt(message, today)
	if err != nil {
		e.log.Warn("failed to build prompt", zap.Error(err))
		return []service.Activity{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// The model call runs aside so the timeout holds even if the generator ignores ctx.
	done := make(chan result, 1)
	go func() {
		text, err := e.gen.Generate(ctx, prompt)
		done <- result{text, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		e.log.Warn("model call abandoned", zap.Duration("timeout", e.timeout), zap.Error(ctx.Err()))
		return []service.Activity{}
	}
	if res.err != nil {
		e.log.Warn("model call failed", zap.Error(res.err))
		return []service.Activity{}
	}

	activities, err := Parse(res.text, today)
	if err != nil {
		e.log.Warn("unusable model output", zap.Error(err), zap.String("output", truncate(res.text, 200)))
		return []service.Activity{}
	}
	e.log.Debug("extracted activities", zap.Int("count", len(activities)))
	return activities
}

// Day returns midnight of t's calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
