package tenant

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencesRe = regexp.MustCompile(`REFERENCES\s+(\w+)\s*\(`)

func TestTableNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, tbl := range allTables() {
		require.NotEmpty(t, tbl.Name)
		assert.False(t, seen[tbl.Name], "duplicate table %q", tbl.Name)
		seen[tbl.Name] = true
	}
}

// Creation order must satisfy dependencies: a REFERENCES clause may only
// point at a table that appears earlier in the list.
func TestTablesInDependencyOrder(t *testing.T) {
	created := make(map[string]bool)
	for _, tbl := range allTables() {
		for _, col := range tbl.Columns {
			for _, m := range referencesRe.FindAllStringSubmatch(col.Definition, -1) {
				ref := m[1]
				assert.True(t, created[ref],
					"table %q references %q before it is created", tbl.Name, ref)
			}
		}
		created[tbl.Name] = true
	}
}

// Columns holding public.staff ids must not carry a REFERENCES clause:
// the target lives in another schema and PostgreSQL would reject (or
// worse, mis-resolve) the foreign key. The integrity validator owns
// these references instead.
func TestStaffRefColumnsHaveNoForeignKey(t *testing.T) {
	for _, tbl := range allTables() {
		for _, col := range tbl.Columns {
			if strings.HasSuffix(col.Name, "staff_id") {
				assert.NotContains(t, col.Definition, "REFERENCES",
					"%s.%s is a cross-schema reference and must not be a foreign key", tbl.Name, col.Name)
			}
		}
	}
}

func TestColumnAdditionsTargetKnownTables(t *testing.T) {
	tables := make(map[string]map[string]bool)
	for _, tbl := range allTables() {
		cols := make(map[string]bool)
		for _, c := range tbl.Columns {
			cols[c.Name] = true
		}
		tables[tbl.Name] = cols
	}

	for _, a := range columnAdditions {
		cols, ok := tables[a.Table]
		require.True(t, ok, "addition targets unknown table %q", a.Table)
		// Additions are the delta on top of the v1 shape; an addition
		// duplicating a base column would hide a drifted definition.
		assert.False(t, cols[a.Column],
			"addition %s.%s duplicates a base column", a.Table, a.Column)
	}
}

func TestIndexesAreIdempotentAndLocal(t *testing.T) {
	for _, tbl := range allTables() {
		for _, idx := range tbl.Indexes {
			assert.Contains(t, idx, "IF NOT EXISTS", "index on %q must be idempotent", tbl.Name)
			assert.Contains(t, idx, fmt.Sprintf(" ON %s(", tbl.Name),
				"index %q must target its own table %q", idx, tbl.Name)
			assert.NotContains(t, idx, ".", "index %q must use unqualified names", idx)
		}
	}
}

func TestCreateStmtRendering(t *testing.T) {
	tbl := Table{
		Name: "widgets",
		Columns: []Column{
			{"id", "BIGSERIAL PRIMARY KEY"},
			{"name", "VARCHAR(50) NOT NULL"},
		},
		Constraints: []string{"UNIQUE (name)"},
	}
	got := tbl.createStmt()
	assert.True(t, strings.HasPrefix(got, "CREATE TABLE IF NOT EXISTS widgets ("))
	assert.Contains(t, got, "id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, got, "name VARCHAR(50) NOT NULL")
	assert.Contains(t, got, "UNIQUE (name)")
}

func TestAlterStmtRendering(t *testing.T) {
	a := ColumnAddition{"users", "nickname", "VARCHAR(50)"}
	assert.Equal(t,
		"ALTER TABLE users ADD COLUMN IF NOT EXISTS nickname VARCHAR(50)",
		a.alterStmt())
}

func TestFixedTableSetComplete(t *testing.T) {
	want := []string{
		"users", "plans", "offers",
		"memberships", "membership_history",
		"attendance", "attendance_history",
		"body_metrics", "body_metrics_history",
		"trainer_clients", "staff_salaries",
		"facilities", "amenities",
		"membership_facilities", "membership_amenities",
		"leads", "lead_activities", "lead_stage_history",
		"campaigns", "campaign_templates", "campaign_recipients",
		"member_notes", "wearable_connections", "wearable_data",
	}
	var got []string
	for _, tbl := range allTables() {
		got = append(got, tbl.Name)
	}
	assert.ElementsMatch(t, want, got)
}

func TestDefaultPlansWellFormed(t *testing.T) {
	require.Len(t, defaultPlans, 3)
	names := make(map[string]bool)
	for _, p := range defaultPlans {
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.PriceCents, 0)
		assert.Greater(t, p.DurationMonths, 0)
		assert.False(t, names[p.Name], "duplicate plan %q", p.Name)
		names[p.Name] = true
	}
}
