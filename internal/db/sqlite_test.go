package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/db/models"
	"github.com/pysugar/seas-portal/internal/plans"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.Plan{}, &models.UsageLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestEnsureClient_CreatesAndUpdates(t *testing.T) {
	db := newTestDB(t)

	client, err := EnsureClient(db, "auth0|abc123", "a@example.com", "Ada")
	if err != nil {
		t.Fatalf("ensure client: %v", err)
	}
	if client.PlanID != "" {
		t.Fatalf("new client should have no plan, got %q", client.PlanID)
	}
	if !client.Active {
		t.Fatal("new client should be active")
	}

	// A later login refreshes identity fields without touching the plan.
	if err := ActivatePlan(db, "auth0|abc123", "basicplan"); err != nil {
		t.Fatalf("activate plan: %v", err)
	}
	client, err = EnsureClient(db, "auth0|abc123", "new@example.com", "Ada L")
	if err != nil {
		t.Fatalf("ensure client again: %v", err)
	}
	if client.Email != "new@example.com" {
		t.Fatalf("email not refreshed, got %q", client.Email)
	}
	if client.PlanID != "basicplan" {
		t.Fatalf("plan should survive re-login, got %q", client.PlanID)
	}
}

func TestActivatePlan_UnknownClient(t *testing.T) {
	db := newTestDB(t)

	if err := ActivatePlan(db, "nobody", "basicplan"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSyncPlans_UpsertsAndRetires(t *testing.T) {
	db := newTestDB(t)

	catalog, err := plans.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if err := SyncPlans(db, catalog); err != nil {
		t.Fatalf("sync plans: %v", err)
	}

	var row models.Plan
	if err := db.Where("id = ?", "basicplan").First(&row).Error; err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if row.PriceCents != 5000 || !row.Active {
		t.Fatalf("unexpected plan row: %+v", row)
	}

	// A plan no longer in the catalog is retired, not deleted.
	stale := models.Plan{ID: "legacyplan", Name: "Legacy", PriceCents: 100, Active: true}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale plan: %v", err)
	}
	if err := SyncPlans(db, catalog); err != nil {
		t.Fatalf("re-sync plans: %v", err)
	}
	var retired models.Plan
	if err := db.Where("id = ?", "legacyplan").First(&retired).Error; err != nil {
		t.Fatalf("load retired plan: %v", err)
	}
	if retired.Active {
		t.Fatal("stale plan should be retired")
	}
}

func TestRecordUsage_And_MonthlyCallCount(t *testing.T) {
	db := newTestDB(t)

	if _, err := EnsureClient(db, "c1", "c1@example.com", ""); err != nil {
		t.Fatalf("ensure client: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := RecordUsage(db, "c1", "/api/validate", 1); err != nil {
			t.Fatalf("record usage: %v", err)
		}
	}
	if err := RecordUsage(db, "other", "/api/validate", 1); err != nil {
		t.Fatalf("record usage: %v", err)
	}

	count, err := MonthlyCallCount(db, "c1")
	if err != nil {
		t.Fatalf("monthly count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 calls this month, got %d", count)
	}
}
