package todo

import (
	"context"
	"time"

	"automator/internal/service"
)

// Extractor finds dated activities in a message. *extract.Engine implements it.
type Extractor interface {
	Extract(ctx context.Context, message string, reference time.Time) []service.Activity
}

// App is the full service: the Manager plus activity extraction.
type App struct {
	*Manager
	extractor Extractor
}

var _ service.Service = (*App)(nil)

// NewApp composes m with an extractor. A nil extractor extracts nothing.
func NewApp(m *Manager, e Extractor) *App {
	return &App{Manager: m, extractor: e}
}

// Extract implements service.Service.
func (a *App) Extract(ctx context.Context, message string, reference time.Time) []service.Activity {
	if a.extractor == nil {
		return []service.Activity{}
	}
	return a.extractor.Extract(ctx, message, reference)
}
