package email

import (
	"fmt"
	"html"
	"sort"
)

// Type selects one of the fixed transactional templates.
type Type string

const (
	TypeWelcome        Type = "welcome"
	TypePasswordReset  Type = "password_reset"
	TypeProgressReport Type = "progress_report"
	TypeStreakReminder Type = "streak_reminder"
)

// Types lists every known template type.
func Types() []Type {
	return []Type{TypeWelcome, TypePasswordReset, TypeProgressReport, TypeStreakReminder}
}

// Valid reports whether t names a known template.
func (t Type) Valid() bool {
	switch t {
	case TypeWelcome, TypePasswordReset, TypeProgressReport, TypeStreakReminder:
		return true
	}
	return false
}

// RequiredData lists the data keys the template needs, sorted.
func (t Type) RequiredData() []string {
	var keys []string
	switch t {
	case TypeWelcome:
		keys = []string{"name"}
	case TypePasswordReset:
		keys = []string{"resetLink"}
	case TypeProgressReport:
		keys = []string{"name", "stats"}
	case TypeStreakReminder:
		keys = []string{"name", "streakDays"}
	}
	sort.Strings(keys)
	return keys
}

// MissingData returns the required keys absent from data, sorted.
func (t Type) MissingData(data map[string]any) []string {
	var missing []string
	for _, key := range t.RequiredData() {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Render produces the subject and HTML body for the template. data
// must contain every key RequiredData names.
func (t Type) Render(data map[string]any) (subject, body string, err error) {
	if !t.Valid() {
		return "", "", fmt.Errorf("unknown email type %q", string(t))
	}
	if missing := t.MissingData(data); len(missing) > 0 {
		return "", "", fmt.Errorf("email type %q missing data: %v", string(t), missing)
	}

	esc := func(key string) string {
		return html.EscapeString(fmt.Sprint(data[key]))
	}

	switch t {
	case TypeWelcome:
		subject = "Welcome to iAlla!"
		body = fmt.Sprintf(
			"<h1>Welcome, %s!</h1><p>Your language journey starts now. Pick a topic and dive into your first lesson.</p>",
			esc("name"))
	case TypePasswordReset:
		subject = "Reset your iAlla password"
		body = fmt.Sprintf(
			"<h1>Password reset</h1><p>Click the link below to choose a new password. The link expires in one hour.</p><p><a href=%q>Reset password</a></p>",
			fmt.Sprint(data["resetLink"]))
	case TypeProgressReport:
		subject = "Your weekly iAlla progress"
		body = fmt.Sprintf(
			"<h1>Nice work, %s!</h1><p>Here is what you accomplished this week:</p><p>%s</p>",
			esc("name"), esc("stats"))
	case TypeStreakReminder:
		subject = "Don't break your streak!"
		body = fmt.Sprintf(
			"<h1>%s, your %s-day streak is waiting</h1><p>A quick lesson today keeps it alive.</p>",
			esc("name"), esc("streakDays"))
	}
	return subject, body, nil
}
