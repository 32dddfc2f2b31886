package inbound

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automator/internal/service"
)

const validUpdate = `{
  "update_id": 912345,
  "message": {
    "message_id": 42,
    "from": {"id": 1001, "is_bot": false, "first_name": "Ada", "last_name": "Lovelace", "language_code": "en"},
    "chat": {"id": 1001, "first_name": "Ada", "last_name": "Lovelace", "type": "private"},
    "date": 1709590500,
    "text": "wake up at five then go for a run"
  }
}`

func TestParseValid(t *testing.T) {
	u, err := Parse([]byte(validUpdate))
	require.NoError(t, err)
	assert.Equal(t, int64(912345), u.UpdateID)
	assert.Equal(t, "Ada", u.Message.From.FirstName)
	assert.Equal(t, "private", u.Message.Chat.Type)
	assert.Equal(t, "wake up at five then go for a run", u.Message.Text)
	assert.Equal(t, int64(1709590500), u.Message.SentAt().Unix())
}

func TestParseDoubleEncoded(t *testing.T) {
	wrapped, err := json.Marshal(validUpdate)
	require.NoError(t, err)

	u, err := Parse(wrapped)
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.Message.MessageID)
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", `hello`, "invalid update"},
		{"array", `[]`, "update: expected object"},
		{"missing key", strings.Replace(validUpdate, `"language_code": "en"`, `"username": "ada"`, 1), "unexpected keys username"},
		{"extra top-level key", strings.Replace(validUpdate, `"update_id": 912345,`, `"update_id": 912345, "edited": true,`, 1), "unexpected keys edited"},
		{"bool as string", strings.Replace(validUpdate, `"is_bot": false`, `"is_bot": "false"`, 1), "message.from.is_bot: expected boolean"},
		{"fractional id", strings.Replace(validUpdate, `"message_id": 42`, `"message_id": 42.5`, 1), "message.message_id: expected integer"},
		{"string date", strings.Replace(validUpdate, `"date": 1709590500`, `"date": "1709590500"`, 1), "message.date: expected integer"},
		{"null text", strings.Replace(validUpdate, `"text": "wake up at five then go for a run"`, `"text": null`, 1), "message.text: expected string"},
		{"trailing data", validUpdate + `{}`, "trailing data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseMissingNestedKey(t *testing.T) {
	body := strings.Replace(validUpdate, `"type": "private"`, `"title": "private"`, 1)
	_, err := Parse([]byte(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected keys title")

	body = strings.Replace(validUpdate, `, "type": "private"`, ``, 1)
	_, err = Parse([]byte(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message.chat.type: missing")
}

type recordingExtractor struct {
	message   string
	reference time.Time
}

func (r *recordingExtractor) Extract(ctx context.Context, message string, reference time.Time) []service.Activity {
	r.message = message
	r.reference = reference
	return []service.Activity{{Name: "run", Date: reference.AddDate(0, 0, 1)}}
}

func TestHandler(t *testing.T) {
	rec := &recordingExtractor{}
	h := NewHandler(rec, nil)

	got, ok := h.Handle(context.Background(), []byte(validUpdate))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "wake up at five then go for a run", rec.message)
	assert.Equal(t, int64(1709590500), rec.reference.Unix())

	rec.message = ""
	_, ok = h.Handle(context.Background(), []byte(`{"update_id": 1}`))
	assert.False(t, ok)
	assert.Empty(t, rec.message, "invalid updates never reach extraction")
}
