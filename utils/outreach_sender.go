package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadreach/models"
)

// LogOutcome records what happened to the audit-log step of a send.
type LogOutcome string

const (
	LogLogged  LogOutcome = "logged"
	LogFailed  LogOutcome = "log_failed"
	LogSkipped LogOutcome = "skipped"
)

var (
	// ErrValidation marks failures caught before any network call is made.
	ErrValidation = errors.New("validation failed")
	// ErrBusy marks a send rejected because the same draft is already in flight.
	ErrBusy = errors.New("send already in progress")
)

// SendResult describes the outcome of dispatching one draft.
type SendResult struct {
	EmailKey      string     `json:"email_key"`
	MessageID     string     `json:"message_id,omitempty"`
	ProviderID    string     `json:"provider_id,omitempty"`
	Scheduled     bool       `json:"scheduled"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`
	LogOutcome    LogOutcome `json:"log_outcome"`
	Error         string     `json:"error,omitempty"`
}

func (r SendResult) OK() bool { return r.Error == "" }

// EmailLogRecorder persists delivery records. Persistence is best effort;
// implementations must not fail the send path.
type EmailLogRecorder interface {
	RecordSend(log *models.EmailLog)
}

// OutreachSender validates, audits and delivers composed outreach emails.
type OutreachSender struct {
	Mailer       Mailer
	Audit        *AuditClient
	Recorder     EmailLogRecorder
	Logger       *logrus.Logger
	FromEmail    string
	FromName     string
	PixelBaseURL string
	// Pacing is the delay inserted before each message in a batch.
	Pacing time.Duration

	busy sync.Map
}

// SendDraft dispatches a single draft to the lead. Validation failures are
// returned wrapped in ErrValidation and never reach the provider. Audit-log
// failures downgrade the result's LogOutcome but do not stop delivery.
func (s *OutreachSender) SendDraft(ctx context.Context, lead *models.Lead, draft EmailDraft) (SendResult, error) {
	key := lead.ID + "/" + draft.Key
	if _, loaded := s.busy.LoadOrStore(key, struct{}{}); loaded {
		return SendResult{EmailKey: draft.Key, Error: ErrBusy.Error()}, ErrBusy
	}
	defer s.busy.Delete(key)

	result := SendResult{EmailKey: draft.Key, LogOutcome: LogSkipped}

	if err := validateDraft(lead, draft); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	scheduledTime := draft.Schedule
	if !IsDeferred(scheduledTime) {
		scheduledTime = ""
	}
	result.Scheduled = scheduledTime != ""
	result.ScheduledTime = scheduledTime

	messageID := uuid.New().String()
	token := NewTrackingToken(messageID)
	result.MessageID = messageID

	html := draft.HTML
	if s.PixelBaseURL != "" {
		html = InjectTrackingPixel(html, TrackingPixelURL(s.PixelBaseURL, messageID, token))
	}

	status := "sent"
	if result.Scheduled {
		status = "scheduled"
	}

	result.LogOutcome = s.recordAudit(ctx, lead, draft, status, scheduledTime)

	providerID, err := s.Mailer.Send(ctx, OutboundEmail{
		FromEmail: s.FromEmail,
		FromName:  s.FromName,
		To:        lead.Email,
		Subject:   draft.Subject,
		HTML:      html,
		Headers: map[string]string{
			"X-Lead-Name":    lead.Name,
			"X-Lead-Company": lead.Company,
			"X-Lead-ID":      lead.ID,
			"X-Email-Type":   "outreach",
		},
		ScheduledTime: scheduledTime,
	})
	if err != nil {
		result.Error = err.Error()
		s.recordLog(lead, draft, "failed", scheduledTime, messageID, token, "")
		return result, fmt.Errorf("send %s to %s: %w", draft.Key, lead.Email, err)
	}
	result.ProviderID = providerID

	s.recordLog(lead, draft, status, scheduledTime, messageID, token, providerID)
	s.Logger.WithFields(logrus.Fields{
		"lead_id":    lead.ID,
		"email_key":  draft.Key,
		"message_id": messageID,
		"status":     status,
	}).Info("Outreach email dispatched")
	return result, nil
}

// SendAll dispatches drafts sequentially, each preceded by the pacing delay.
// A failed draft does not stop the rest; the only early exit is context
// cancellation. progress may be nil.
func (s *OutreachSender) SendAll(ctx context.Context, lead *models.Lead, drafts []EmailDraft, progress func(i int, r SendResult)) ([]SendResult, error) {
	results := make([]SendResult, 0, len(drafts))
	for i, draft := range drafts {
		if s.Pacing > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.Pacing):
			}
		} else if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.SendDraft(ctx, lead, draft)
		if err != nil {
			s.Logger.WithFields(logrus.Fields{
				"lead_id":   lead.ID,
				"email_key": draft.Key,
			}).WithError(err).Warn("Batch send item failed")
		}
		results = append(results, result)
		if progress != nil {
			progress(i, result)
		}
	}
	return results, nil
}

// HasDeferred reports whether any draft in the batch carries a deferred
// schedule. Batches with one require explicit confirmation before starting.
func HasDeferred(drafts []EmailDraft) bool {
	for _, d := range drafts {
		if IsDeferred(d.Schedule) {
			return true
		}
	}
	return false
}

func validateDraft(lead *models.Lead, draft EmailDraft) error {
	if strings.TrimSpace(lead.Email) == "" {
		return fmt.Errorf("lead has no email address")
	}
	if err := checkmail.ValidateFormat(lead.Email); err != nil {
		return fmt.Errorf("invalid recipient address %q", lead.Email)
	}
	if strings.TrimSpace(draft.Subject) == "" {
		return fmt.Errorf("draft %s has an empty subject", draft.Key)
	}
	if strings.TrimSpace(draft.HTML) == "" {
		return fmt.Errorf("draft %s has no rendered content", draft.Key)
	}
	if lead.Unsubscribed {
		return fmt.Errorf("lead %s has unsubscribed", lead.ID)
	}
	return nil
}

func (s *OutreachSender) recordAudit(ctx context.Context, lead *models.Lead, draft EmailDraft, status, scheduledTime string) LogOutcome {
	if s.Audit == nil {
		return LogSkipped
	}
	err := s.Audit.Record(ctx, AuditEntry{
		Subject:       draft.Subject,
		HTMLContent:   draft.HTML,
		LeadEmail:     lead.Email,
		LeadName:      lead.Name,
		LeadCompany:   lead.Company,
		LeadID:        lead.ID,
		Status:        status,
		ScheduledTime: scheduledTime,
		EmailType:     draft.Key,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		s.Logger.WithField("lead_id", lead.ID).WithError(err).Warn("Audit log write failed, continuing with send")
		return LogFailed
	}
	return LogLogged
}

func (s *OutreachSender) recordLog(lead *models.Lead, draft EmailDraft, status, scheduledTime, messageID, token, providerID string) {
	if s.Recorder == nil {
		return
	}
	s.Recorder.RecordSend(&models.EmailLog{
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		LeadCompany:   lead.Company,
		LeadEmail:     lead.Email,
		Subject:       draft.Subject,
		HTMLContent:   draft.HTML,
		Status:        status,
		ScheduledTime: scheduledTime,
		EmailType:     draft.Key,
		MessageID:     messageID,
		TrackingToken: token,
		ProviderID:    providerID,
	})
}
