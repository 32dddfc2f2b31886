package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"automator/internal/service"
)

var (
	errNoJSON        = errors.New("no JSON object in output")
	errNoActivities  = errors.New(`missing "activities"`)
	errEmptyActivity = errors.New("empty activity")
)

type item struct {
	Activity *string `json:"activity"`
	Date     *string `json:"date"`
}

// Parse reads model output of the form {"activities": [{"activity": ..., "date": ...}]}.
// Code fences and prose around the object are ignored. A bare string element is an
// activity due tomorrow. Any malformed element fails the whole parse.
func Parse(raw string, today time.Time) ([]service.Activity, error) {
	body := outermostObject(raw)
	if body == "" {
		return nil, errNoJSON
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	field, ok := top["activities"]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return nil, errNoActivities
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(field, &elems); err != nil {
		return nil, fmt.Errorf(`decode "activities": %w`, err)
	}

	out := make([]service.Activity, 0, len(elems))
	for i, elem := range elems {
		a, err := parseItem(elem, today)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func parseItem(elem json.RawMessage, today time.Time) (service.Activity, error) {
	var label string
	if err := json.Unmarshal(elem, &label); err == nil {
		label = Label(label)
		if label == "" {
			return service.Activity{}, errEmptyActivity
		}
		return service.Activity{Name: label, Date: today.AddDate(0, 0, 1)}, nil
	}

	var it item
	if err := json.Unmarshal(elem, &it); err != nil {
		return service.Activity{}, err
	}
	if it.Activity == nil {
		return service.Activity{}, errors.New(`missing "activity"`)
	}
	if it.Date == nil {
		return service.Activity{}, errors.New(`missing "date"`)
	}
	label = Label(*it.Activity)
	if label == "" {
		return service.Activity{}, errEmptyActivity
	}
	date, err := ResolveDate(*it.Date, today)
	if err != nil {
		return service.Activity{}, err
	}
	return service.Activity{Name: label, Date: date}, nil
}

// Label collapses whitespace and keeps at most MaxWords words.
func Label(s string) string {
	words := strings.Fields(s)
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	return strings.Join(words, " ")
}

// outermostObject returns the text from the first '{' to the last '}'.
func outermostObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
