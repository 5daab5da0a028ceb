package models

import "time"

// UsageLog records one billable machine call made with an API secret.
type UsageLog struct {
	ID        string `gorm:"primaryKey"` // UUID
	ClientID  string `gorm:"index"`
	Endpoint  string
	Cost      int // cost in credits
	CreatedAt time.Time `gorm:"index"`
}
