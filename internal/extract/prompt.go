package extract

import (
	"strings"
	"text/template"
	"time"

	"automator/internal/service"
)

var promptTemplate = template.Must(template.New("extract").Parse(`You are a precise planning assistant. Extract every activity from the user's message.

STRICT REQUIREMENTS:
1. Extract EVERY actionable item the user intends to do.
2. Ignore filler words, hesitations and small talk.
3. Name each activity in at most three words, using the noun form rather than the verb
   ("boxing class", not "go to boxing class"; "leetcode", not "solve a leetcode").
4. Give each activity a concrete date. Today is {{.Today}} ({{.Weekday}}); tomorrow is {{.Tomorrow}}.
   When the message does not say when, use tomorrow ({{.Tomorrow}}).
5. Write every date as dd-mm-yyyy.
6. If there is nothing actionable, return an empty list.

Respond with JSON only, in exactly this format:
{"activities": [{"activity": "boxing class", "date": "{{.Tomorrow}}"}]}

Input Message:
"""
{{.Message}}
"""
`))

type promptData struct {
	Message  string
	Today    string
	Weekday  string
	Tomorrow string
}

// BuildPrompt renders the extraction prompt for message, with today's date spelled out.
func BuildPrompt(message string, today time.Time) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Message:  message,
		Today:    today.Format(service.DateLayout),
		Weekday:  today.Weekday().String(),
		Tomorrow: today.AddDate(0, 0, 1).Format(service.DateLayout),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
