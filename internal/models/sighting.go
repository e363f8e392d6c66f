package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sighting is one reported whale observation awaiting or past admin approval
type Sighting struct {
	gorm.Model

	SightingID  string    `json:"sighting_id" gorm:"uniqueIndex"`
	PhoneNumber string    `json:"phone_number" gorm:"not null"` // reporter
	Name        string    `json:"name"`                         // reporter's first name at time of report
	Details     string    `json:"details"`                      // free-text location
	Keyword     string    `json:"-"`                            // one-time admin confirmation word
	ReportedAt  time.Time `json:"reported_at" gorm:"not null;index"`
	Notified    bool      `json:"notified" gorm:"default:false"`
}

// BeforeCreate assigns the public sighting id
func (s *Sighting) BeforeCreate(tx *gorm.DB) error {
	if s.SightingID == "" {
		s.SightingID = uuid.NewString()
	}
	return nil
}
