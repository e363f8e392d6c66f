package models

import "time"

// ConversationSession stores the per-sender conversation context between texts
type ConversationSession struct {
	PhoneNumber string    `json:"phone_number" gorm:"primaryKey"`
	Context     string    `json:"context"` // JSON object of session keys
	ExpiresAt   time.Time `json:"expires_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}
