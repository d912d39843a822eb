package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// resetTimeout bounds the search-path reset when the caller's context
// is already cancelled.
const resetTimeout = 5 * time.Second

// Router executes tenant-scoped units of work. It acquires a dedicated
// pooled connection, binds its search path to the tenant's schema for
// the duration of the caller's function, and unconditionally restores
// the path before the connection goes back to the pool.
//
// The pool must hand out full physical connections (pgxpool does).
// Session state set here must survive across statements; a transaction-
// or statement-pooling proxy between this process and PostgreSQL breaks
// that contract and must not be used for this pool.
type Router struct {
	db             *database.DB
	acquireTimeout time.Duration
	log            *zap.Logger
}

// NewRouter creates a tenant execution router. acquireTimeout bounds
// how long ExecuteInTenant waits for a free connection; zero means wait
// as long as the caller's context allows.
func NewRouter(db *database.DB, acquireTimeout time.Duration, log *zap.Logger) *Router {
	return &Router{db: db, acquireTimeout: acquireTimeout, log: log}
}

// Conn is a connection handle bound to one tenant's schema. It is the
// only way tenant-aware code receives a connection, so a query can
// never be issued against an unbound session by construction. Valid
// only inside the unit of work that received it; callers must not
// retain it.
type Conn struct {
	conn   *pgxpool.Conn
	schema string
}

// Schema returns the schema this handle resolves unqualified names
// against first.
func (c *Conn) Schema() string { return c.schema }

// Exec runs a statement on the bound connection.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

// Query runs a query on the bound connection.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query on the bound connection.
func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the bound connection. The transaction
// inherits the tenant search path.
func (c *Conn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

// ExecuteInTenant runs fn with a connection whose unqualified names
// resolve against the tenant's schema first and the public schema
// second. The search path is restored before the connection returns to
// the pool, whether fn succeeds, fails, or panics; fn's error is
// propagated unchanged and no retries happen here.
func (r *Router) ExecuteInTenant(ctx context.Context, tenantID int64, fn func(ctx context.Context, conn *Conn) error) error {
	schema := SchemaName(tenantID)

	acquireCtx := ctx
	if r.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, r.acquireTimeout)
		defer cancel()
	}
	conn, err := r.db.Pool.Acquire(acquireCtx)
	if err != nil {
		metrics.TenantUnitsOfWork.WithLabelValues("acquire_failed").Inc()
		return fmt.Errorf("tenant: acquire connection for %s: %w", schema, err)
	}
	defer conn.Release()

	// The reset is a correctness requirement, not cleanup: a connection
	// released while still bound to this tenant would leak its context
	// into whatever unit of work acquires it next. It runs on a context
	// detached from the caller's so cancellation cannot skip it.
	defer func() {
		resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
		defer cancel()
		if _, rerr := conn.Exec(resetCtx, `SET search_path TO public`); rerr != nil {
			// Could not prove the session is clean; destroy the
			// connection instead of returning it to the pool.
			r.log.Warn("search path reset failed, discarding connection",
				zap.String("schema", schema),
				zap.Error(rerr))
			_ = conn.Conn().Close(resetCtx)
		}
	}()

	if _, err := conn.Exec(ctx, fmt.Sprintf(`SET search_path TO %q, public`, schema)); err != nil {
		metrics.TenantUnitsOfWork.WithLabelValues("bind_failed").Inc()
		return fmt.Errorf("tenant: bind search path for %s: %w", schema, err)
	}

	if err := fn(ctx, &Conn{conn: conn, schema: schema}); err != nil {
		metrics.TenantUnitsOfWork.WithLabelValues("error").Inc()
		return err
	}
	metrics.TenantUnitsOfWork.WithLabelValues("ok").Inc()
	return nil
}
