package models

import (
	"strings"

	"gorm.io/gorm"
)

// Subscriber is a phone number that receives whale alerts or has reported one
type Subscriber struct {
	// gorm.Model gives us ID, CreatedAt, UpdatedAt and DeletedAt
	gorm.Model

	PhoneNumber string `json:"phone_number" gorm:"uniqueIndex;not null"` // E.164, as delivered by Twilio
	Name        string `json:"name"`                                     // set on first completed report
	Subscribed  bool   `json:"subscribed" gorm:"default:false;index"`
	WeekendOnly bool   `json:"weekend_only" gorm:"default:false"`
}

// BeforeSave trims whitespace users tend to text around their name
func (s *Subscriber) BeforeSave(tx *gorm.DB) error {
	s.PhoneNumber = strings.TrimSpace(s.PhoneNumber)
	s.Name = strings.TrimSpace(s.Name)
	return nil
}

// HasName reports whether the subscriber has been credited before
func (s *Subscriber) HasName() bool {
	return s != nil && s.Name != ""
}
