package models

import "time"

// Client is a subscriber account, keyed by the identity provider's
// stable subject identifier.
type Client struct {
	ID           string `gorm:"primaryKey"` // identity provider "sub" claim
	Email        string `gorm:"index"`
	Name         string
	PlanID       string // plan catalog ID, e.g. "basicplan"
	Active       bool   `gorm:"default:true"`
	TrialEndDate *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
