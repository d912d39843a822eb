package tenant

import (
	"context"
	"fmt"
	"sort"

	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/metrics"
	"go.uber.org/zap"
)

// Result records the outcome of migrating one tenant schema.
type Result struct {
	Schema string `json:"schema"`
	Err    error  `json:"-"`
}

// Report summarizes a full migration sweep.
type Report struct {
	Discovered int      `json:"discovered"`
	Migrated   int      `json:"migrated"`
	Results    []Result `json:"results"`
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary renders the "N of M" completion line.
func (r Report) Summary() string {
	return fmt.Sprintf("migrated %d of %d tenant schemas", r.Migrated, r.Discovered)
}

// MigrateAll applies the current migration list to every existing
// tenant schema. Catalog metadata is the only source of truth for which
// tenants exist; the registry is not consulted. Each schema migrates
// independently: one tenant's failure is recorded and logged but never
// blocks the rest of the sweep. Safe to re-run at any time; a second
// run against up-to-date schemas changes nothing.
//
// The returned error covers only the discovery step. Per-schema
// failures live in the report.
func (m *Manager) MigrateAll(ctx context.Context) (Report, error) {
	schemas, err := m.discoverSchemas(ctx)
	if err != nil {
		return Report{}, err
	}

	report := sweep(ctx, schemas, m.migrateSchema, m.log)

	m.log.Info("migration sweep complete",
		zap.Int("discovered", report.Discovered),
		zap.Int("migrated", report.Migrated),
		zap.Int("failed", len(report.Failed())))
	metrics.SweepRuns.Inc()
	metrics.SweepSchemasMigrated.Add(float64(report.Migrated))
	metrics.SweepSchemasFailed.Add(float64(len(report.Failed())))
	return report, nil
}

// sweep fans out over schemas with independent error capture per item.
// Split from MigrateAll so the isolation behavior is testable without a
// database.
func sweep(ctx context.Context, schemas []string, apply func(context.Context, string) error, log *zap.Logger) Report {
	report := Report{Discovered: len(schemas)}
	for _, schema := range schemas {
		err := apply(ctx, schema)
		if err != nil {
			log.Error("tenant schema migration failed",
				zap.String("schema", schema),
				zap.Error(err))
		} else {
			report.Migrated++
		}
		report.Results = append(report.Results, Result{Schema: schema, Err: err})
	}
	return report
}

// discoverSchemas lists schemas matching the tenant naming convention,
// sorted for deterministic sweep order.
func (m *Manager) discoverSchemas(ctx context.Context) ([]string, error) {
	return discoverTenantSchemas(ctx, m.db.Pool)
}

func discoverTenantSchemas(ctx context.Context, q database.Executor) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT schema_name FROM information_schema.schemata WHERE schema_name LIKE 'tenant\_%'`)
	if err != nil {
		return nil, fmt.Errorf("tenant: discover schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("tenant: discover schemas scan: %w", err)
		}
		// LIKE also matches names like tenant_template_old; keep only
		// names the naming function could have produced.
		if IsTenantSchema(name) {
			schemas = append(schemas, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant: discover schemas: %w", err)
	}

	sort.Strings(schemas)
	return schemas, nil
}

// migrateSchema brings one schema to the current table set inside a
// single transaction: missing columns, missing feature tables and
// indexes, and missing seed rows.
func (m *Manager) migrateSchema(ctx context.Context, schema string) error {
	tx, err := m.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tenant: begin migrate %s: %w", schema, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`SET LOCAL search_path TO %q, public`, schema)); err != nil {
		return fmt.Errorf("tenant: bind search path for %s: %w", schema, err)
	}

	if err := applySchemaMigrations(ctx, tx, schema); err != nil {
		return err
	}

	reseeded, err := seedDefaultPlans(ctx, tx)
	if err != nil {
		return fmt.Errorf("tenant: migrate %s: %w", schema, err)
	}
	if reseeded {
		// An empty plans table may mean the rows were deleted on
		// purpose; we restore them anyway, matching the provisioning
		// baseline, but leave a trace.
		m.log.Debug("reseeded default plans during sweep", zap.String("schema", schema))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tenant: commit migrate %s: %w", schema, err)
	}
	return nil
}

// applySchemaMigrations issues the additive DDL for one schema. The
// executor must already resolve unqualified names against that schema.
func applySchemaMigrations(ctx context.Context, exec database.Executor, schema string) error {
	// Feature tables first: a column addition may target one of them.
	for _, t := range featureTables {
		if _, err := exec.Exec(ctx, t.createStmt()); err != nil {
			return fmt.Errorf("tenant: ensure table %s.%s: %w", schema, t.Name, err)
		}
		for _, idx := range t.Indexes {
			if _, err := exec.Exec(ctx, idx); err != nil {
				return fmt.Errorf("tenant: ensure index on %s.%s: %w", schema, t.Name, err)
			}
		}
	}

	for _, a := range columnAdditions {
		if _, err := exec.Exec(ctx, a.alterStmt()); err != nil {
			return fmt.Errorf("tenant: add column %s.%s.%s: %w", schema, a.Table, a.Column, err)
		}
	}
	return nil
}
