package tenant

import (
	"fmt"
	"strings"
)

// Column is one column of a tenant table.
type Column struct {
	Name       string
	Definition string
}

// Table describes one table of the fixed tenant table set as data. Both
// the lifecycle manager and the migration sweep render DDL from these
// literals, so there is exactly one source of truth for what a tenant
// schema contains.
//
// All DDL rendered from a Table uses unqualified names; callers run it
// on a connection whose search path is already bound to the target
// schema. REFERENCES clauses therefore resolve within the same schema.
type Table struct {
	Name        string
	Columns     []Column
	Constraints []string
	Indexes     []string
}

// createStmt renders an idempotent CREATE TABLE statement.
func (t Table) createStmt() string {
	parts := make([]string, 0, len(t.Columns)+len(t.Constraints))
	for _, c := range t.Columns {
		parts = append(parts, c.Name+" "+c.Definition)
	}
	parts = append(parts, t.Constraints...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		t.Name, strings.Join(parts, ",\n    "))
}

// ColumnAddition is one entry of the fixed forward-only migration list.
// Additions are applied with ADD COLUMN IF NOT EXISTS, so re-running
// them is a no-op; nothing is ever dropped or renamed.
type ColumnAddition struct {
	Table      string
	Column     string
	Definition string
}

// alterStmt renders an idempotent ALTER TABLE statement.
func (a ColumnAddition) alterStmt() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		a.Table, a.Column, a.Definition)
}

// coreTables is the original tenant table set, in dependency order:
// a table appears only after every table it references. Columns here
// are the v1 shape; later columns live in columnAdditions.
//
// staff_id, trainer_staff_id and author_staff_id columns refer to
// public.staff rows. They carry no REFERENCES clause because PostgreSQL
// cannot enforce a foreign key across schemas; the integrity validator
// checks these before business writes commit.
var coreTables = []Table{
	{
		Name: "users",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(255) NOT NULL"},
			{"email", "VARCHAR(255) UNIQUE"},
			{"phone", "VARCHAR(50)"},
			{"gender", "VARCHAR(20)"},
			{"date_of_birth", "DATE"},
			{"address", "TEXT"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'active'"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
			{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_users_status ON users(status)",
		},
	},
	{
		Name: "plans",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(100) NOT NULL"},
			{"description", "TEXT"},
			{"price_cents", "INTEGER NOT NULL"},
			{"duration_months", "INTEGER NOT NULL"},
			{"features", "JSONB NOT NULL DEFAULT '[]'"},
			{"is_active", "BOOLEAN NOT NULL DEFAULT TRUE"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
			{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
	},
	{
		Name: "offers",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"plan_id", "BIGINT REFERENCES plans(id) ON DELETE CASCADE"},
			{"title", "VARCHAR(255) NOT NULL"},
			{"description", "TEXT"},
			{"discount_percent", "NUMERIC(5,2) NOT NULL DEFAULT 0"},
			{"valid_from", "DATE"},
			{"valid_until", "DATE"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_offers_plan ON offers(plan_id)",
		},
	},
	{
		Name: "memberships",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"plan_id", "BIGINT NOT NULL REFERENCES plans(id)"},
			{"offer_id", "BIGINT REFERENCES offers(id)"},
			{"start_date", "DATE NOT NULL"},
			{"end_date", "DATE NOT NULL"},
			{"price_paid_cents", "INTEGER NOT NULL"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'active'"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
			{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id)",
			"CREATE INDEX IF NOT EXISTS idx_memberships_status ON memberships(status)",
		},
	},
	{
		Name: "membership_history",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"membership_id", "BIGINT NOT NULL REFERENCES memberships(id) ON DELETE CASCADE"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"action", "VARCHAR(50) NOT NULL"},
			{"old_plan_id", "BIGINT"},
			{"new_plan_id", "BIGINT"},
			{"notes", "TEXT"},
			{"changed_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_membership_history_membership ON membership_history(membership_id)",
		},
	},
	{
		Name: "attendance",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"check_in", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
			{"check_out", "TIMESTAMPTZ"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_attendance_user ON attendance(user_id)",
			"CREATE INDEX IF NOT EXISTS idx_attendance_check_in ON attendance(check_in)",
		},
	},
	{
		Name: "attendance_history",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"attendance_date", "DATE NOT NULL"},
			{"total_minutes", "INTEGER NOT NULL DEFAULT 0"},
			{"visits", "INTEGER NOT NULL DEFAULT 0"},
			{"archived_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_attendance_history_user_date ON attendance_history(user_id, attendance_date)",
		},
	},
	{
		Name: "body_metrics",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"recorded_on", "DATE NOT NULL"},
			{"weight_kg", "NUMERIC(5,2)"},
			{"height_cm", "NUMERIC(5,2)"},
			{"body_fat_percent", "NUMERIC(5,2)"},
			{"muscle_mass_kg", "NUMERIC(5,2)"},
			{"bmi", "NUMERIC(5,2)"},
			{"notes", "TEXT"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_body_metrics_user ON body_metrics(user_id, recorded_on)",
		},
	},
	{
		Name: "body_metrics_history",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"metric_id", "BIGINT"},
			{"recorded_on", "DATE NOT NULL"},
			{"snapshot", "JSONB NOT NULL"},
			{"archived_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
	},
	{
		Name: "trainer_clients",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"trainer_staff_id", "BIGINT NOT NULL"}, // public.staff, cross-schema
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"assigned_on", "DATE NOT NULL DEFAULT CURRENT_DATE"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'active'"},
		},
		Constraints: []string{
			"UNIQUE (trainer_staff_id, user_id)",
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_trainer_clients_trainer ON trainer_clients(trainer_staff_id)",
		},
	},
	{
		Name: "staff_salaries",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"staff_id", "BIGINT NOT NULL"}, // public.staff, cross-schema
			{"period_month", "DATE NOT NULL"},
			{"base_cents", "INTEGER NOT NULL"},
			{"bonus_cents", "INTEGER NOT NULL DEFAULT 0"},
			{"deductions_cents", "INTEGER NOT NULL DEFAULT 0"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'pending'"},
			{"paid_on", "DATE"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Constraints: []string{
			"UNIQUE (staff_id, period_month)",
		},
	},
	{
		Name: "facilities",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(100) NOT NULL"},
			{"description", "TEXT"},
			{"capacity", "INTEGER"},
			{"is_active", "BOOLEAN NOT NULL DEFAULT TRUE"},
		},
	},
	{
		Name: "amenities",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(100) NOT NULL"},
			{"description", "TEXT"},
			{"is_active", "BOOLEAN NOT NULL DEFAULT TRUE"},
		},
	},
	{
		Name: "membership_facilities",
		Columns: []Column{
			{"membership_id", "BIGINT NOT NULL REFERENCES memberships(id) ON DELETE CASCADE"},
			{"facility_id", "BIGINT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE"},
		},
		Constraints: []string{
			"PRIMARY KEY (membership_id, facility_id)",
		},
	},
	{
		Name: "membership_amenities",
		Columns: []Column{
			{"membership_id", "BIGINT NOT NULL REFERENCES memberships(id) ON DELETE CASCADE"},
			{"amenity_id", "BIGINT NOT NULL REFERENCES amenities(id) ON DELETE CASCADE"},
		},
		Constraints: []string{
			"PRIMARY KEY (membership_id, amenity_id)",
		},
	},
}

// featureTables were introduced after the original launch. The sweep
// engine creates them in schemas provisioned before they existed; the
// lifecycle manager creates them directly for new tenants. Same
// dependency-order rule as coreTables.
var featureTables = []Table{
	{
		Name: "leads",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(255) NOT NULL"},
			{"email", "VARCHAR(255)"},
			{"phone", "VARCHAR(50)"},
			{"source", "VARCHAR(50)"},
			{"stage", "VARCHAR(50) NOT NULL DEFAULT 'new'"},
			{"assigned_staff_id", "BIGINT"}, // public.staff, cross-schema
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
			{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_leads_stage ON leads(stage)",
		},
	},
	{
		Name: "lead_activities",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"lead_id", "BIGINT NOT NULL REFERENCES leads(id) ON DELETE CASCADE"},
			{"activity_type", "VARCHAR(50) NOT NULL"},
			{"notes", "TEXT"},
			{"occurred_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_lead_activities_lead ON lead_activities(lead_id)",
		},
	},
	{
		Name: "lead_stage_history",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"lead_id", "BIGINT NOT NULL REFERENCES leads(id) ON DELETE CASCADE"},
			{"from_stage", "VARCHAR(50)"},
			{"to_stage", "VARCHAR(50) NOT NULL"},
			{"changed_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
	},
	{
		Name: "campaigns",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(255) NOT NULL"},
			{"channel", "VARCHAR(50) NOT NULL DEFAULT 'email'"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'draft'"},
			{"starts_at", "TIMESTAMPTZ"},
			{"ends_at", "TIMESTAMPTZ"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
	},
	{
		Name: "campaign_templates",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"campaign_id", "BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE"},
			{"name", "VARCHAR(255) NOT NULL"},
			{"subject", "VARCHAR(255)"},
			{"body", "TEXT"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
	},
	{
		Name: "campaign_recipients",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"campaign_id", "BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE"},
			{"user_id", "BIGINT REFERENCES users(id) ON DELETE CASCADE"},
			{"lead_id", "BIGINT REFERENCES leads(id) ON DELETE CASCADE"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'pending'"},
			{"sent_at", "TIMESTAMPTZ"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_campaign_recipients_campaign ON campaign_recipients(campaign_id)",
		},
	},
	{
		Name: "member_notes",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"author_staff_id", "BIGINT NOT NULL"}, // public.staff, cross-schema
			{"note", "TEXT NOT NULL"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_member_notes_user ON member_notes(user_id)",
		},
	},
	{
		Name: "wearable_connections",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"user_id", "BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
			{"provider", "VARCHAR(50) NOT NULL"},
			{"external_user_id", "VARCHAR(255)"},
			{"access_token", "TEXT"},
			{"status", "VARCHAR(20) NOT NULL DEFAULT 'connected'"},
			{"connected_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Constraints: []string{
			"UNIQUE (user_id, provider)",
		},
	},
	{
		Name: "wearable_data",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"connection_id", "BIGINT NOT NULL REFERENCES wearable_connections(id) ON DELETE CASCADE"},
			{"recorded_on", "DATE NOT NULL"},
			{"steps", "INTEGER"},
			{"calories", "INTEGER"},
			{"heart_rate_avg", "INTEGER"},
			{"sleep_minutes", "INTEGER"},
			{"payload", "JSONB"},
			{"created_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		},
		Indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_wearable_data_connection ON wearable_data(connection_id, recorded_on)",
		},
	},
}

// columnAdditions is the fixed forward-only migration list. Entries are
// appended over time and never removed, so a schema of any age reaches
// the current shape by applying the whole list.
var columnAdditions = []ColumnAddition{
	{"users", "profile_photo_url", "TEXT"},
	{"users", "emergency_contact", "VARCHAR(255)"},
	{"plans", "max_freeze_days", "INTEGER NOT NULL DEFAULT 0"},
	{"memberships", "auto_renew", "BOOLEAN NOT NULL DEFAULT FALSE"},
	{"attendance", "source", "VARCHAR(20) NOT NULL DEFAULT 'front_desk'"},
	{"staff_salaries", "currency", "VARCHAR(3) NOT NULL DEFAULT 'USD'"},
	{"leads", "converted_user_id", "BIGINT"},
}

// allTables returns the complete current table set in creation order.
func allTables() []Table {
	out := make([]Table, 0, len(coreTables)+len(featureTables))
	out = append(out, coreTables...)
	out = append(out, featureTables...)
	return out
}
