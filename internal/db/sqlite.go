package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pysugar/seas-portal/internal/db/models"
	"github.com/pysugar/seas-portal/internal/plans"
)

// InitDB initializes the SQLite database connection and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Client{}, &models.Plan{}, &models.UsageLog{}); err != nil {
		return nil, err
	}

	return db, nil
}

// SyncPlans upserts the catalog's purchasable plans into the plans
// table so billing queries can join against them. Plans removed from
// the catalog are marked inactive, never deleted.
func SyncPlans(db *gorm.DB, catalog *plans.Catalog) error {
	seen := make(map[string]bool)
	for _, p := range catalog.List() {
		row := models.Plan{
			ID:         p.ID,
			Name:       p.Name,
			PriceCents: p.AmountCents,
			CallLimit:  p.CallLimit,
			RateLimit:  int64(p.RateLimit),
			Active:     true,
		}
		if err := db.Save(&row).Error; err != nil {
			return fmt.Errorf("syncing plan %s: %w", p.ID, err)
		}
		seen[p.ID] = true
	}

	var existing []models.Plan
	if err := db.Find(&existing).Error; err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}
	for _, row := range existing {
		if !seen[row.ID] && row.Active {
			if err := db.Model(&models.Plan{}).Where("id = ?", row.ID).Update("active", false).Error; err != nil {
				return fmt.Errorf("retiring plan %s: %w", row.ID, err)
			}
		}
	}
	return nil
}

// EnsureClient upserts the client row for an authenticated subject,
// refreshing email and name from the identity provider on every login.
func EnsureClient(db *gorm.DB, clientID, email, name string) (*models.Client, error) {
	var client models.Client
	err := db.Where("id = ?", clientID).First(&client).Error
	if err == gorm.ErrRecordNotFound {
		client = models.Client{
			ID:     clientID,
			Email:  email,
			Name:   name,
			Active: true,
		}
		if err := db.Create(&client).Error; err != nil {
			return nil, fmt.Errorf("creating client %s: %w", clientID, err)
		}
		return &client, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading client %s: %w", clientID, err)
	}

	client.Email = email
	client.Name = name
	if err := db.Save(&client).Error; err != nil {
		return nil, fmt.Errorf("updating client %s: %w", clientID, err)
	}
	return &client, nil
}

// GetClient loads a client row, or gorm.ErrRecordNotFound.
func GetClient(db *gorm.DB, clientID string) (*models.Client, error) {
	var client models.Client
	if err := db.Where("id = ?", clientID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// ActivatePlan marks the client as subscribed to the given catalog plan.
// Called from the payment webhook after a completed checkout.
func ActivatePlan(db *gorm.DB, clientID, planID string) error {
	result := db.Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]interface{}{"plan_id": planID, "active": true})
	if result.Error != nil {
		return fmt.Errorf("activating plan %s for %s: %w", planID, clientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordUsage appends one usage log row for a billable machine call.
func RecordUsage(db *gorm.DB, clientID, endpoint string, cost int) error {
	entry := models.UsageLog{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Endpoint: endpoint,
		Cost:     cost,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("recording usage for %s: %w", clientID, err)
	}
	return nil
}

// MonthlyCallCount returns the number of billable calls the client made
// since the start of the current calendar month (UTC).
func MonthlyCallCount(db *gorm.DB, clientID string) (int64, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int64
	err := db.Model(&models.UsageLog{}).
		Where("client_id = ? AND created_at >= ?", clientID, monthStart).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting usage for %s: %w", clientID, err)
	}
	return count, nil
}
