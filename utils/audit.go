package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuditEntry is the record of one dispatched email posted to the audit log.
type AuditEntry struct {
	Subject       string    `json:"subject"`
	HTMLContent   string    `json:"html_content"`
	LeadEmail     string    `json:"lead_email"`
	LeadName      string    `json:"lead_name"`
	LeadCompany   string    `json:"lead_company"`
	LeadID        string    `json:"lead_id"`
	Status        string    `json:"status"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	EmailType     string    `json:"email_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditClient posts sent-email records to the internal audit endpoint.
// Failures are reported to the caller but never block delivery.
type AuditClient struct {
	endpoint string
	client   *http.Client
}

func NewAuditClient(baseURL string) *AuditClient {
	return &AuditClient{
		endpoint: baseURL + "/api/log-sent-email",
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (a *AuditClient) Record(ctx context.Context, entry AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("audit request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("audit endpoint returned %d", resp.StatusCode)
	}
	return nil
}
