// Package tenant implements the schema orchestration layer for the
// multi-tenant database: per-tenant schema lifecycle, the startup
// migration sweep, and the router that binds pooled connections to a
// tenant's search path for the duration of a unit of work.
package tenant

import (
	"fmt"
	"strconv"
	"strings"
)

// schemaPrefix is the naming convention for tenant schemas. The sweep
// engine treats any schema matching it as a tenant, so nothing else in
// the database may use this prefix.
const schemaPrefix = "tenant_"

// SchemaName maps a tenant id to its schema name. Pure and
// collision-free: distinct ids always map to distinct names.
func SchemaName(tenantID int64) string {
	return fmt.Sprintf("%s%d", schemaPrefix, tenantID)
}

// IsTenantSchema reports whether a schema name follows the tenant
// naming convention.
func IsTenantSchema(name string) bool {
	_, err := TenantID(name)
	return err == nil
}

// TenantID extracts the tenant id from a schema name. Returns an error
// for names outside the convention: a non-numeric suffix (e.g.
// "tenant_template") and non-canonical spellings of an id ("tenant_007",
// "tenant_+5") that SchemaName could never have produced.
func TenantID(schemaName string) (int64, error) {
	rest, ok := strings.CutPrefix(schemaName, schemaPrefix)
	if !ok || rest == "" {
		return 0, fmt.Errorf("tenant: schema %q does not match naming convention", schemaName)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id < 0 || rest != strconv.FormatInt(id, 10) {
		return 0, fmt.Errorf("tenant: schema %q does not match naming convention", schemaName)
	}
	return id, nil
}
