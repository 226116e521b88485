package utils

import (
	"context"
	"strings"
)

// OutboundEmail is one fully-composed message handed to a Mailer.
type OutboundEmail struct {
	FromEmail string
	FromName  string
	To        string
	Subject   string
	HTML      string
	// Headers carries lead-attribution headers verbatim.
	Headers map[string]string
	// ScheduledTime is an opaque provider schedule string. Empty or "now"
	// means immediate delivery.
	ScheduledTime string
}

// Mailer delivers a composed email and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, email OutboundEmail) (string, error)
}

// IsDeferred reports whether the schedule string requests anything other
// than immediate delivery. The string itself is never interpreted further.
func IsDeferred(scheduledTime string) bool {
	s := strings.TrimSpace(scheduledTime)
	return s != "" && !strings.EqualFold(s, "now")
}
