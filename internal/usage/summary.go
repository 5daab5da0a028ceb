package usage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pysugar/seas-portal/internal/db"
	"github.com/pysugar/seas-portal/internal/db/models"
	"github.com/pysugar/seas-portal/internal/plans"
)

// Summary is what the usage and profile pages display for one client.
type Summary struct {
	PlanName     string `json:"plan_name"`
	CurrentCalls int64  `json:"current_calls"`
	CallLimit    int64  `json:"api_limit"`
}

// BuildSummary resolves the client's plan and this month's call count.
func BuildSummary(gdb *gorm.DB, catalog *plans.Catalog, client *models.Client) (Summary, error) {
	plan := catalog.Get(client.PlanID)

	calls, err := db.MonthlyCallCount(gdb, client.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("building usage summary: %w", err)
	}

	return Summary{
		PlanName:     plan.Name,
		CurrentCalls: calls,
		CallLimit:    plan.CallLimit,
	}, nil
}
