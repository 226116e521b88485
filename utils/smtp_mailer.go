package utils

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers email over plain SMTP. It is the fallback transport
// for environments without a Resend account; scheduled delivery is not
// supported because SMTP has no deferral concept.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password}
}

func (m *SMTPMailer) Send(ctx context.Context, email OutboundEmail) (string, error) {
	if IsDeferred(email.ScheduledTime) {
		return "", fmt.Errorf("smtp transport does not support scheduled delivery")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", email.FromEmail, email.FromName)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	for k, v := range email.Headers {
		msg.SetHeader(k, v)
	}
	msg.SetBody("text/html", email.HTML)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	done := make(chan error, 1)
	go func() { done <- dialer.DialAndSend(msg) }()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send failed: %w", err)
		}
	}
	return uuid.New().String(), nil
}
