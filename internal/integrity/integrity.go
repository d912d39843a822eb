// Package integrity performs application-level checks for references
// that cross schema boundaries. PostgreSQL cannot enforce a foreign key
// from a tenant schema into the public schema (or vice versa), so
// business services call these checks before committing a write that
// embeds such a reference.
package integrity

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/tenant"
)

// ErrUnresolvedReference is returned when a cross-schema reference does
// not resolve to an existing row.
var ErrUnresolvedReference = errors.New("integrity: unresolved cross-schema reference")

// Validator resolves cross-schema references against both the public
// schema and, through the tenant router, tenant schemas.
type Validator struct {
	db     *database.DB
	router *tenant.Router
}

// NewValidator creates a cross-schema reference validator.
func NewValidator(db *database.DB, router *tenant.Router) *Validator {
	return &Validator{db: db, router: router}
}

// CheckStaff verifies that a staff_id stored in a tenant table refers
// to an existing row in public.staff.
func (v *Validator) CheckStaff(ctx context.Context, staffID int64) error {
	var exists bool
	err := v.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM public.staff WHERE id = $1)`, staffID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("integrity: check staff %d: %w", staffID, err)
	}
	if !exists {
		return fmt.Errorf("%w: staff %d", ErrUnresolvedReference, staffID)
	}
	return nil
}

// staffRefColumns lists every tenant-table column that stores a
// public.staff id. The audit scans exactly these.
var staffRefColumns = []struct {
	Table  string
	Column string
}{
	{"trainer_clients", "trainer_staff_id"},
	{"staff_salaries", "staff_id"},
	{"member_notes", "author_staff_id"},
	{"leads", "assigned_staff_id"},
}

// Violation is one cross-schema reference that does not resolve.
type Violation struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	StaffID int64  `json:"staffId"`
}

// AuditTenant scans a tenant's staff-reference columns for ids that no
// longer exist in public.staff. Because tenant and global schemas share
// one database, a single query per column resolves both sides; the
// tenant side is reached through the router, the public side by
// qualified name.
func (v *Validator) AuditTenant(ctx context.Context, tenantID int64) ([]Violation, error) {
	violations := []Violation{}
	err := v.router.ExecuteInTenant(ctx, tenantID, func(ctx context.Context, conn *tenant.Conn) error {
		for _, ref := range staffRefColumns {
			query := fmt.Sprintf(
				`SELECT DISTINCT %s FROM %s
				 WHERE %s IS NOT NULL
				   AND NOT EXISTS (SELECT 1 FROM public.staff s WHERE s.id = %s)`,
				ref.Column, ref.Table, ref.Column, ref.Column)
			rows, err := conn.Query(ctx, query)
			if err != nil {
				return fmt.Errorf("integrity: audit %s.%s: %w", ref.Table, ref.Column, err)
			}
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					return fmt.Errorf("integrity: audit %s.%s scan: %w", ref.Table, ref.Column, err)
				}
				violations = append(violations, Violation{Table: ref.Table, Column: ref.Column, StaffID: id})
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return fmt.Errorf("integrity: audit %s.%s: %w", ref.Table, ref.Column, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}

// CheckTenantUser verifies that a user id refers to an existing row in
// the given tenant's users table. Used when a global-side record (e.g.,
// a support ticket) points into a tenant schema.
func (v *Validator) CheckTenantUser(ctx context.Context, tenantID, userID int64) error {
	var exists bool
	err := v.router.ExecuteInTenant(ctx, tenantID, func(ctx context.Context, conn *tenant.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
		).Scan(&exists)
	})
	if err != nil {
		return fmt.Errorf("integrity: check user %d in tenant %d: %w", userID, tenantID, err)
	}
	if !exists {
		return fmt.Errorf("%w: user %d in tenant %d", ErrUnresolvedReference, userID, tenantID)
	}
	return nil
}
