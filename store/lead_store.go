package store

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
)

// LeadStore reads and updates leads. Full-collection reads fail open so a
// database outage degrades to an empty list instead of a hard error.
type LeadStore struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewLeadStore(db *gorm.DB, logger *logrus.Logger) *LeadStore {
	return &LeadStore{DB: db, Logger: logger}
}

// GetAll returns every lead ordered by creation time. On query failure it
// logs and returns an empty slice.
func (s *LeadStore) GetAll() []models.Lead {
	var leads []models.Lead
	if err := s.DB.Order("created_at DESC").Find(&leads).Error; err != nil {
		s.Logger.WithError(err).Warn("Lead query failed, returning empty collection")
		return []models.Lead{}
	}
	return leads
}

// GetByID looks up a single lead. Missing leads return (nil, nil).
func (s *LeadStore) GetByID(id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.DB.First(&lead, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lead %s: %w", id, err)
	}
	return &lead, nil
}

// MarkUnsubscribed flags the lead and records an Unsubscribe row in one
// transaction. Unknown lead ids still record the unsubscribe by email.
func (s *LeadStore) MarkUnsubscribed(email, leadID, source string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if leadID != "" {
			if err := tx.Model(&models.Lead{}).
				Where("id = ?", leadID).
				Updates(map[string]interface{}{"unsubscribed": true, "campaign_status": "unsubscribed"}).Error; err != nil {
				return fmt.Errorf("flag lead %s: %w", leadID, err)
			}
		}
		if err := tx.Create(&models.Unsubscribe{Email: email, LeadID: leadID, Source: source}).Error; err != nil {
			return fmt.Errorf("record unsubscribe for %s: %w", email, err)
		}
		return nil
	})
}
