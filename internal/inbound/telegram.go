// Package inbound validates Telegram bot updates and feeds their text to extraction.
package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"automator/internal/service"
)

// Update is a Telegram update carrying a text message.
type Update struct {
	UpdateID int64   `json:"update_id"`
	Message  Message `json:"message"`
}

// Message is the text message of an update.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      User   `json:"from"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// User is the sender of a message.
type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      string `json:"type"`
}

// SentAt returns the message timestamp.
func (m Message) SentAt() time.Time {
	return time.Unix(m.Date, 0)
}

type kind int

const (
	kindInt kind = iota
	kindBool
	kindString
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindBool:
		return "boolean"
	default:
		return "string"
	}
}

// shape maps each required key to a kind or a nested shape.
type shape map[string]any

var updateShape = shape{
	"update_id": kindInt,
	"message": shape{
		"message_id": kindInt,
		"from": shape{
			"id":            kindInt,
			"is_bot":        kindBool,
			"first_name":    kindString,
			"last_name":     kindString,
			"language_code": kindString,
		},
		"chat": shape{
			"id":         kindInt,
			"first_name": kindString,
			"last_name":  kindString,
			"type":       kindString,
		},
		"date": kindInt,
		"text": kindString,
	},
}

// Parse validates raw against the exact update shape: no missing or extra keys,
// and every value of the expected JSON type. A JSON string holding the object is
// unwrapped first.
func Parse(raw []byte) (Update, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Update{}, fmt.Errorf("invalid update: %w", err)
		}
		raw = []byte(inner)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Update{}, fmt.Errorf("invalid update: %w", err)
	}
	if dec.More() {
		return Update{}, fmt.Errorf("invalid update: trailing data")
	}
	if err := validate(v, updateShape, ""); err != nil {
		return Update{}, fmt.Errorf("invalid update: %w", err)
	}

	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return Update{}, fmt.Errorf("invalid update: %w", err)
	}
	return u, nil
}

func validate(v any, s shape, path string) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected object", displayPath(path))
	}
	var extra []string
	for k := range obj {
		if _, ok := s[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%s: unexpected keys %s", displayPath(path), strings.Join(extra, ", "))
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child := path + "." + k
		val, ok := obj[k]
		if !ok {
			return fmt.Errorf("%s: missing", displayPath(child))
		}
		switch want := s[k].(type) {
		case shape:
			if err := validate(val, want, child); err != nil {
				return err
			}
		case kind:
			if !hasKind(val, want) {
				return fmt.Errorf("%s: expected %s", displayPath(child), want)
			}
		}
	}
	return nil
}

func hasKind(v any, k kind) bool {
	switch k {
	case kindInt:
		n, ok := v.(json.Number)
		if !ok {
			return false
		}
		_, err := n.Int64()
		return err == nil
	case kindBool:
		_, ok := v.(bool)
		return ok
	default:
		_, ok := v.(string)
		return ok
	}
}

func displayPath(p string) string {
	if p == "" {
		return "update"
	}
	return strings.TrimPrefix(p, ".")
}

// Extractor finds dated activities in a message.
type Extractor interface {
	Extract(ctx context.Context, message string, reference time.Time) []service.Activity
}

// Handler extracts activities from incoming updates.
type Handler struct {
	extractor Extractor
	log       *zap.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(e Extractor, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{extractor: e, log: log}
}

// Handle validates raw and extracts from its text, dated relative to when the message
// was sent. An invalid update returns false.
func (h *Handler) Handle(ctx context.Context, raw []byte) ([]service.Activity, bool) {
	u, err := Parse(raw)
	if err != nil {
		h.log.Info("rejected update", zap.Error(err))
		return nil, false
	}
	h.log.Debug("accepted update",
		zap.Int64("update_id", u.UpdateID),
		zap.Int64("chat_id", u.Message.Chat.ID))
	return h.extractor.Extract(ctx, u.Message.Text, u.Message.SentAt()), true
}
