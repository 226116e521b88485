package models

import (
	"time"

	"gorm.io/gorm"
)

// EmailLog is the audit row recorded for every outbound send attempt.
// MessageID is the internal id baked into the tracking pixel; ProviderID is
// whatever the delivery provider returned.
type EmailLog struct {
	gorm.Model

	LeadID      string `gorm:"index" json:"lead_id"`
	LeadName    string `json:"lead_name"`
	LeadCompany string `json:"lead_company"`
	LeadEmail   string `gorm:"index" json:"lead_email"`

	Subject     string `gorm:"not null" json:"subject"`
	HTMLContent string `gorm:"type:text" json:"html_content"`

	Status        string `gorm:"not null" json:"status"` // sent, scheduled, failed
	ScheduledTime string `json:"scheduled_time"`
	EmailType     string `json:"email_type"` // ordinal key, e.g. "Email 2"

	MessageID     string `gorm:"index" json:"message_id"`
	TrackingToken string `json:"-"`
	ProviderID    string `json:"provider_id"`

	OpenedAt  *time.Time `json:"opened_at"`
	OpenCount int        `gorm:"default:0" json:"open_count"`
}

// Unsubscribe records an opt-out event.
type Unsubscribe struct {
	gorm.Model

	Email  string `gorm:"not null;index" json:"email"`
	LeadID string `gorm:"index" json:"lead_id"`
	Source string `json:"source"` // link, manual
}
