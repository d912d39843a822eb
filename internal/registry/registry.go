// Package registry provides the data model and CRUD operations for the
// global tenant registry in the public schema. A registry row is the
// billing-facing record of a gym; the tenant's own data lives under its
// tenant_<id> schema, managed by the tenant package.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a tenant lookup finds no matching row.
var ErrNotFound = errors.New("registry: not found")

// ErrNoAPIKey is returned when verifying a key for a tenant that has
// none issued.
var ErrNoAPIKey = errors.New("registry: no api key issued")

// Tenant represents a single registered gym.
type Tenant struct {
	ID         int64     `json:"id"`
	ExternalID uuid.UUID `json:"externalId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store provides tenant registry operations backed by PostgreSQL.
type Store struct {
	db *database.DB
}

// NewStore creates a registry Store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

const tenantColumns = `id, external_id, name, email, status, created_at, updated_at`

// Add inserts a new tenant with status "active" and a fresh external
// id. Returns a wrapped pgx error on constraint violations (e.g.,
// duplicate email).
func (s *Store) Add(ctx context.Context, name, email string) (*Tenant, error) {
	var t Tenant
	err := s.db.Pool.QueryRow(ctx,
		`INSERT INTO tenants (external_id, name, email) VALUES ($1, $2, $3)
		 RETURNING `+tenantColumns,
		uuid.New(), name, email,
	).Scan(&t.ID, &t.ExternalID, &t.Name, &t.Email, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("registry: add %q: %w", name, err)
	}
	return &t, nil
}

// Get returns a single tenant by id. Returns ErrNotFound if no tenant
// matches.
func (s *Store) Get(ctx context.Context, id int64) (*Tenant, error) {
	var t Tenant
	err := s.db.Pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.ExternalID, &t.Name, &t.Email, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get %d: %w", id, err)
	}
	return &t, nil
}

// List returns all tenants ordered by id.
func (s *Store) List(ctx context.Context) ([]Tenant, error) {
	return s.list(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
}

// ListActive returns only tenants with status "active", ordered by id.
func (s *Store) ListActive(ctx context.Context) ([]Tenant, error) {
	return s.list(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE status = 'active' ORDER BY id`)
}

func (s *Store) list(ctx context.Context, query string) ([]Tenant, error) {
	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	defer rows.Close()

	tenants := []Tenant{} // empty slice, not nil (clean JSON: [] not null)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.ExternalID, &t.Name, &t.Email, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("registry: list scan: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// UpdateStatus changes a tenant's status. Valid statuses are "active"
// and "disabled". Returns ErrNotFound if the tenant does not exist.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (*Tenant, error) {
	var t Tenant
	err := s.db.Pool.QueryRow(ctx,
		`UPDATE tenants SET status = $1, updated_at = NOW() WHERE id = $2
		 RETURNING `+tenantColumns,
		status, id,
	).Scan(&t.ID, &t.ExternalID, &t.Name, &t.Email, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: update %d: %w", id, err)
	}
	return &t, nil
}

// Remove deletes a tenant's registry row. The tenant's schema is
// dropped separately by the lifecycle manager. Returns ErrNotFound if
// the tenant does not exist.
func (s *Store) Remove(ctx context.Context, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("registry: remove %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: tenant %d", ErrNotFound, id)
	}
	return nil
}

// IssueAPIKey generates a new API key for a tenant and stores its
// bcrypt hash. The plaintext key is returned exactly once; only the
// hash persists. Issuing a key replaces any previous one.
func (s *Store) IssueAPIKey(ctx context.Context, id int64) (string, error) {
	// Single UUID keeps the key under bcrypt's 72-byte input limit.
	key := "gsk_" + uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("registry: hash api key: %w", err)
	}

	result, err := s.db.Pool.Exec(ctx,
		`UPDATE tenants SET api_key_hash = $1, updated_at = NOW() WHERE id = $2`,
		string(hash), id)
	if err != nil {
		return "", fmt.Errorf("registry: store api key for %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: tenant %d", ErrNotFound, id)
	}
	return key, nil
}

// VerifyAPIKey checks a presented key against the tenant's stored hash.
// Returns nil on match, ErrNoAPIKey if none was ever issued, and
// bcrypt's mismatch error otherwise.
func (s *Store) VerifyAPIKey(ctx context.Context, id int64, key string) error {
	var hash *string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT api_key_hash FROM tenants WHERE id = $1`, id,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: tenant %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("registry: verify api key for %d: %w", id, err)
	}
	if hash == nil {
		return ErrNoAPIKey
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(key))
}
