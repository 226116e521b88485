package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendMailer delivers email through the Resend transactional API.
type ResendMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logrus.Logger
}

func NewResendMailer(baseURL, apiKey string, logger *logrus.Logger) *ResendMailer {
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	return &ResendMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type resendRequest struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	Headers     map[string]string `json:"headers,omitempty"`
	ScheduledAt string            `json:"scheduled_at,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m *ResendMailer) Send(ctx context.Context, email OutboundEmail) (string, error) {
	if m.apiKey == "" {
		return "", fmt.Errorf("resend API key is not configured")
	}

	payload := resendRequest{
		From:        fmt.Sprintf("%s <%s>", email.FromName, email.FromEmail),
		To:          []string{email.To},
		Subject:     email.Subject,
		HTML:        email.HTML,
		Headers:     email.Headers,
		ScheduledAt: email.ScheduledTime,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s", resendErrorMessage(resp.StatusCode, raw))
	}

	var out resendResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ID == "" {
		// Delivery was accepted; synthesize an id so callers always get one.
		m.logger.WithField("status", resp.StatusCode).Warn("Resend response had no message id")
		return uuid.New().String(), nil
	}
	return out.ID, nil
}

// resendErrorMessage prefers the API's own message field, then its error
// field, then a generic status line.
func resendErrorMessage(status int, raw []byte) string {
	var apiErr resendError
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return fmt.Sprintf("resend API error: %d %s", status, http.StatusText(status))
}
