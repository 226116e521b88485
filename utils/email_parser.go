package utils

import (
	"fmt"
	"strings"
)

// EmailDraft is one composed outreach email. Key is the "Email N" label used
// in API responses, Body the plain-text content, HTML the rendered variant.
type EmailDraft struct {
	Key             string `json:"key"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
	HTML            string `json:"html,omitempty"`
	ComponentSource string `json:"component_source,omitempty"`
	Schedule        string `json:"schedule,omitempty"`
}

const subjectMarker = "Subject:"

// DraftKey labels the Nth draft in a sequence.
func DraftKey(n int) string {
	return fmt.Sprintf("Email %d", n)
}

// ParseEmails extracts up to maxCount drafts from free-form research output.
// Each draft starts at a "Subject:" line; the body runs to the next marker or
// the end of the content. Blocks with an empty subject or body are dropped
// without counting against maxCount.
func ParseEmails(content string, maxCount int) []EmailDraft {
	var drafts []EmailDraft
	rest := content
	for len(drafts) < maxCount {
		idx := strings.Index(rest, subjectMarker)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(subjectMarker):]

		var subjectLine, body string
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			subjectLine = rest[:nl]
			body = rest[nl+1:]
		} else {
			subjectLine = rest
			rest = ""
		}
		if next := strings.Index(body, subjectMarker); next >= 0 {
			body, rest = body[:next], body[next:]
		} else {
			rest = ""
		}

		subject := cleanSubject(subjectLine)
		body = strings.TrimSpace(body)
		if subject == "" || body == "" {
			continue
		}
		drafts = append(drafts, EmailDraft{
			Key:     DraftKey(len(drafts) + 1),
			Subject: subject,
			Body:    body,
		})
	}
	return drafts
}

// cleanSubject trims whitespace and strips a single leading list bullet.
func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	for _, bullet := range []string{"-", "•", "*"} {
		if strings.HasPrefix(s, bullet) {
			return strings.TrimSpace(s[len(bullet):])
		}
	}
	return s
}

// DraftMap converts an ordered draft slice to the keyed form API responses use.
func DraftMap(drafts []EmailDraft) map[string]EmailDraft {
	m := make(map[string]EmailDraft, len(drafts))
	for _, d := range drafts {
		m[d.Key] = d
	}
	return m
}
