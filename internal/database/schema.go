package database

// GlobalSchema contains the SQL statements for the shared public-schema
// tables. The tenant registry and platform staff live here; every
// tenant's own tables live under its tenant_<id> schema and may refer
// to these rows only by value, never by foreign key, since PostgreSQL
// does not enforce references across schemas.
const GlobalSchema = `
-- tenants: One row per gym hosted by this instance. The schema for a
-- tenant is always tenant_<id>; no separate schema-name column exists
-- because the mapping is deterministic.
CREATE TABLE IF NOT EXISTS tenants (
    id           BIGSERIAL PRIMARY KEY,
    external_id  UUID UNIQUE NOT NULL,
    name         VARCHAR(255) NOT NULL,
    email        VARCHAR(255) UNIQUE NOT NULL,
    status       VARCHAR(20) NOT NULL DEFAULT 'active',
    api_key_hash VARCHAR(255),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tenants_status ON tenants(status);

-- staff: Platform-level staff shared across tenants. Tenant tables such
-- as staff_salaries carry a staff_id column that points here; the
-- integrity validator confirms the row exists before a write commits.
CREATE TABLE IF NOT EXISTS staff (
    id         BIGSERIAL PRIMARY KEY,
    name       VARCHAR(255) NOT NULL,
    email      VARCHAR(255) UNIQUE NOT NULL,
    role       VARCHAR(50) NOT NULL DEFAULT 'trainer',
    status     VARCHAR(20) NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_staff_status ON staff(status);
`
