// Package googletasks publishes extracted activities to Google Tasks.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"automator/internal/config"
	"automator/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope the publisher needs.
	Scope = "https://www.googleapis.com/auth/tasks"
)

// ErrAuth reports missing, expired or revoked credentials.
var ErrAuth = errors.New("not logged in to Google")

// Publisher inserts activities into a Google Tasks list.
type Publisher struct {
	svc *tasks.Service
}

// New creates a Publisher from the OAuth files in the config directory.
func New(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json (run: automator login)", ErrAuth)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", ErrAuth, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w (run: automator login)", ErrAuth)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %v", ErrAuth, err)
	}

	// Refreshes the access token as needed
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a Publisher with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Publisher, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Publisher{svc: svc}, nil
}

// Publish inserts one task per activity into the list titled listName, creating
// the list when missing. Each task is due on its activity's day. It stops at the
// first failure and returns how many tasks were inserted before it.
func (p *Publisher) Publish(ctx context.Context, listName string, activities []service.Activity) (int, error) {
	listID, err := p.ensureList(ctx, listName)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, a := range activities {
		if err := p.insert(ctx, listID, a); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ensureList finds a list by title (case-insensitive, trimmed) or creates it.
func (p *Publisher) ensureList(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("list name required")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var matches []string
	err := p.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.EqualFold(strings.TrimSpace(list.Title), name) {
				matches = append(matches, list.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(matches) {
	case 0:
		created, err := p.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		return created.Id, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous list name: %s", name)
	}
}

func (p *Publisher) insert(ctx context.Context, listID string, a service.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	task := &tasks.Task{
		Title: a.Name,
		Due:   service.Day(a.Date).Format(time.RFC3339),
	}
	if _, err := p.svc.Tasks.Insert(listID, task).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("%w: token expired or revoked (run: automator login)", ErrAuth)
	}

	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}

	return err
}
