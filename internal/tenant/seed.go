package tenant

import (
	"context"
	"fmt"

	"github.com/gymstack-host/gymstack/internal/database"
)

// defaultPlan is one baseline membership plan seeded into every new
// (or emptied) plans table.
type defaultPlan struct {
	Name           string
	Description    string
	PriceCents     int
	DurationMonths int
	Features       string // JSON array
}

var defaultPlans = []defaultPlan{
	{
		Name:           "Basic",
		Description:    "Gym floor access during staffed hours",
		PriceCents:     2999,
		DurationMonths: 1,
		Features:       `["gym_floor", "locker"]`,
	},
	{
		Name:           "Standard",
		Description:    "Full access plus group classes",
		PriceCents:     14999,
		DurationMonths: 6,
		Features:       `["gym_floor", "locker", "group_classes", "sauna"]`,
	},
	{
		Name:           "Premium",
		Description:    "Everything, including personal training sessions",
		PriceCents:     24999,
		DurationMonths: 12,
		Features:       `["gym_floor", "locker", "group_classes", "sauna", "personal_training", "pool"]`,
	},
}

// seedDefaultPlans inserts the baseline plans when the plans table is
// empty. Reports whether rows were inserted. A non-empty table is the
// expected steady state, not an error.
//
// The executor must already resolve unqualified names against the
// target tenant schema. Note that an intentionally emptied plans table
// is indistinguishable from a never-seeded one here, so the sweep will
// reseed it; callers log when that happens.
func seedDefaultPlans(ctx context.Context, exec database.Executor) (bool, error) {
	var count int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return false, fmt.Errorf("tenant: count plans: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, p := range defaultPlans {
		_, err := exec.Exec(ctx,
			`INSERT INTO plans (name, description, price_cents, duration_months, features)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.Name, p.Description, p.PriceCents, p.DurationMonths, p.Features)
		if err != nil {
			return false, fmt.Errorf("tenant: seed plan %q: %w", p.Name, err)
		}
	}
	return true, nil
}
