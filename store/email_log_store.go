package store

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
)

// EmailLogStore persists delivery records and open-tracking events.
type EmailLogStore struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewEmailLogStore(db *gorm.DB, logger *logrus.Logger) *EmailLogStore {
	return &EmailLogStore{DB: db, Logger: logger}
}

// RecordSend writes one delivery record. Persistence is best effort; a
// failed insert is logged and swallowed so delivery results stand.
func (s *EmailLogStore) RecordSend(log *models.EmailLog) {
	if err := s.DB.Create(log).Error; err != nil {
		s.Logger.WithFields(logrus.Fields{
			"lead_id":    log.LeadID,
			"message_id": log.MessageID,
		}).WithError(err).Warn("Email log insert failed")
	}
}

// RecordOpen marks a message opened when the token matches. It returns false
// for unknown message ids or token mismatches.
func (s *EmailLogStore) RecordOpen(messageID, token string) bool {
	var log models.EmailLog
	err := s.DB.First(&log, "message_id = ?", messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if err != nil {
		s.Logger.WithField("message_id", messageID).WithError(err).Warn("Open tracking lookup failed")
		return false
	}
	if log.TrackingToken != token {
		return false
	}

	updates := map[string]interface{}{"open_count": gorm.Expr("open_count + 1")}
	if log.OpenedAt == nil {
		now := time.Now().UTC()
		updates["opened_at"] = &now
	}
	if err := s.DB.Model(&log).Updates(updates).Error; err != nil {
		s.Logger.WithField("message_id", messageID).WithError(err).Warn("Open tracking update failed")
	}
	return true
}

// RecentForLead returns the newest delivery records for one lead.
func (s *EmailLogStore) RecentForLead(leadID string, limit int) ([]models.EmailLog, error) {
	var logs []models.EmailLog
	err := s.DB.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
