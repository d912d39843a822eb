package registry

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("GYMSTACK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GYMSTACK_TEST_DATABASE_URL not set, skipping integration test")
	}
	db, err := database.Open(context.Background(), url, 5)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func addTestTenant(t *testing.T, s *Store) *Tenant {
	t.Helper()
	ctx := context.Background()
	email := fmt.Sprintf("gym%d@example.com", time.Now().UnixNano())
	tenant, err := s.Add(ctx, "Test Gym", email)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Remove(context.Background(), tenant.ID) })
	return tenant
}

func TestAddAndGet(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	added := addTestTenant(t, s)
	assert.Equal(t, "active", added.Status)
	assert.NotZero(t, added.ExternalID)

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, added.Email, got.Email)
}

func TestGetNotFound(t *testing.T) {
	s := NewStore(openTestDB(t))

	_, err := s.Get(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddDuplicateEmail(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	added := addTestTenant(t, s)
	_, err := s.Add(ctx, "Another Gym", added.Email)
	require.Error(t, err)
}

func TestUpdateStatus(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	added := addTestTenant(t, s)
	updated, err := s.UpdateStatus(ctx, added.ID, "disabled")
	require.NoError(t, err)
	assert.Equal(t, "disabled", updated.Status)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	for _, tenant := range active {
		assert.NotEqual(t, added.ID, tenant.ID)
	}
}

func TestRemoveNotFound(t *testing.T) {
	s := NewStore(openTestDB(t))
	assert.ErrorIs(t, s.Remove(context.Background(), -1), ErrNotFound)
}

func TestAPIKeyLifecycle(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	added := addTestTenant(t, s)

	// No key issued yet.
	assert.ErrorIs(t, s.VerifyAPIKey(ctx, added.ID, "anything"), ErrNoAPIKey)

	key, err := s.IssueAPIKey(ctx, added.ID)
	require.NoError(t, err)
	assert.Contains(t, key, "gsk_")

	assert.NoError(t, s.VerifyAPIKey(ctx, added.ID, key))
	assert.Error(t, s.VerifyAPIKey(ctx, added.ID, key+"tampered"))

	// Re-issuing invalidates the old key.
	key2, err := s.IssueAPIKey(ctx, added.ID)
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
	assert.Error(t, s.VerifyAPIKey(ctx, added.ID, key))
	assert.NoError(t, s.VerifyAPIKey(ctx, added.ID, key2))
}

func TestIssueAPIKeyNotFound(t *testing.T) {
	s := NewStore(openTestDB(t))
	_, err := s.IssueAPIKey(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
