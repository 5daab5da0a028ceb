package models

import "time"

// Plan mirrors one catalog entry in the database so billing reports can
// join against the plan a client bought at purchase time.
type Plan struct {
	ID         string `gorm:"primaryKey"` // plan catalog ID
	Name       string
	PriceCents int64
	CallLimit  int64
	RateLimit  int64 // allowed calls per minute, <= 0 means unlimited
	Active     bool  `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
