package notifier

import (
	"strings"
	"time"
)

const maxMessageLen = 3800

// Section is one titled block of a notification.
type Section struct {
	Title string
	Lines []string
}

// Message is the structured form of a cycle notification.
type Message struct {
	Title     string
	Sections  []Section
	Footer    string
	Timestamp time.Time
}

// Render produces plain text, truncated to maxMessageLen.
func (m Message) Render() string {
	var b strings.Builder
	if header := strings.TrimSpace(m.Title); header != "" {
		b.WriteString(header + "\n")
	}
	for _, sec := range m.Sections {
		lines := nonEmpty(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		if title := strings.TrimSpace(sec.Title); title != "" {
			b.WriteString("\n" + title + "\n")
		}
		for _, line := range lines {
			b.WriteString("- " + line + "\n")
		}
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString("\n" + footer + "\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("time: " + m.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	body := strings.TrimSpace(b.String())
	if len(body) > maxMessageLen {
		body = body[:maxMessageLen] + "..."
	}
	return body
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}
