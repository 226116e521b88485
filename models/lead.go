package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead represents a single sales contact. The outreach workflow treats leads
// as read-only; only the unsubscribe flow mutates them.
type Lead struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"index" json:"email"`
	Company  string `json:"company"`
	Position string `json:"position"`

	// Type and FacilityType both classify the customer; Type wins when set.
	// Older imports only carry FacilityType.
	Type         string `gorm:"index" json:"type"`
	FacilityType string `json:"facility_type"`

	// Research signals; presence is used as a personalization-readiness flag.
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	Notes    string `gorm:"type:text" json:"notes"`

	Status         string `gorm:"default:'new'" json:"status"` // new, contacted, qualified, converted
	AssignedTo     string `json:"assigned_to"`
	CampaignStatus string `json:"campaign_status"`
	Unsubscribed   bool   `gorm:"default:false" json:"unsubscribed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// CustomerType returns the effective classification: Type when present,
// otherwise FacilityType.
func (l *Lead) CustomerType() string {
	if l.Type != "" {
		return l.Type
	}
	return l.FacilityType
}

// HasResearchData reports whether the lead carries enough public footprint
// to personalize against.
func (l *Lead) HasResearchData() bool {
	return l.LinkedIn != "" || l.Website != ""
}
