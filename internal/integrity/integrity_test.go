package integrity

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*database.DB, *Validator, *tenant.Manager, int64) {
	t.Helper()
	url := os.Getenv("GYMSTACK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GYMSTACK_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()

	db, err := database.Open(ctx, url, 5)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	m := tenant.NewManager(db, zap.NewNop())
	id := time.Now().UnixNano() % 1_000_000_000
	require.NoError(t, m.CreateSchema(ctx, id))
	t.Cleanup(func() { _ = m.DropSchema(context.Background(), id) })

	router := tenant.NewRouter(db, 5*time.Second, zap.NewNop())
	return db, NewValidator(db, router), m, id
}

func addStaff(t *testing.T, db *database.DB) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Pool.QueryRow(context.Background(),
		`INSERT INTO public.staff (name, email) VALUES ($1, $2) RETURNING id`,
		"Test Trainer", fmt.Sprintf("trainer%d@example.com", time.Now().UnixNano()),
	).Scan(&id))
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM public.staff WHERE id = $1`, id)
	})
	return id
}

func TestCheckStaff(t *testing.T) {
	db, v, _, _ := setup(t)
	ctx := context.Background()

	staffID := addStaff(t, db)
	assert.NoError(t, v.CheckStaff(ctx, staffID))
	assert.ErrorIs(t, v.CheckStaff(ctx, -1), ErrUnresolvedReference)
}

func TestCheckTenantUser(t *testing.T) {
	db, v, _, tenantID := setup(t)
	ctx := context.Background()

	router := tenant.NewRouter(db, 5*time.Second, zap.NewNop())
	var userID int64
	require.NoError(t, router.ExecuteInTenant(ctx, tenantID, func(ctx context.Context, conn *tenant.Conn) error {
		return conn.QueryRow(ctx,
			`INSERT INTO users (name) VALUES ('Member') RETURNING id`).Scan(&userID)
	}))

	assert.NoError(t, v.CheckTenantUser(ctx, tenantID, userID))
	assert.ErrorIs(t, v.CheckTenantUser(ctx, tenantID, userID+1), ErrUnresolvedReference)
}

func TestAuditTenantFindsDanglingStaffRef(t *testing.T) {
	db, v, _, tenantID := setup(t)
	ctx := context.Background()

	staffID := addStaff(t, db)
	router := tenant.NewRouter(db, 5*time.Second, zap.NewNop())

	// One note by a real staff member, one by a staff id that no row
	// backs. The database accepts both: no foreign key can protect a
	// cross-schema reference.
	const danglingStaffID = int64(987_654_321)
	require.NoError(t, router.ExecuteInTenant(ctx, tenantID, func(ctx context.Context, conn *tenant.Conn) error {
		var userID int64
		if err := conn.QueryRow(ctx,
			`INSERT INTO users (name) VALUES ('Member') RETURNING id`).Scan(&userID); err != nil {
			return err
		}
		if _, err := conn.Exec(ctx,
			`INSERT INTO member_notes (user_id, author_staff_id, note) VALUES ($1, $2, 'ok')`,
			userID, staffID); err != nil {
			return err
		}
		_, err := conn.Exec(ctx,
			`INSERT INTO member_notes (user_id, author_staff_id, note) VALUES ($1, $2, 'dangling')`,
			userID, danglingStaffID)
		return err
	}))

	violations, err := v.AuditTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "member_notes", violations[0].Table)
	assert.Equal(t, "author_staff_id", violations[0].Column)
	assert.Equal(t, danglingStaffID, violations[0].StaffID)
}

func TestAuditTenantCleanSchema(t *testing.T) {
	_, v, _, tenantID := setup(t)

	violations, err := v.AuditTenant(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
