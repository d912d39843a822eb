package tenant

import "testing"

func TestSchemaName(t *testing.T) {
	tests := []struct {
		id   int64
		want string
	}{
		{1, "tenant_1"},
		{42, "tenant_42"},
		{7000000001, "tenant_7000000001"},
		{0, "tenant_0"},
	}

	for _, tt := range tests {
		if got := SchemaName(tt.id); got != tt.want {
			t.Errorf("SchemaName(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestSchemaNameDistinct(t *testing.T) {
	seen := make(map[string]int64)
	for id := int64(0); id < 10000; id++ {
		name := SchemaName(id)
		if prev, ok := seen[name]; ok {
			t.Fatalf("SchemaName collision: ids %d and %d both map to %q", prev, id, name)
		}
		seen[name] = id
	}
}

func TestTenantID(t *testing.T) {
	tests := []struct {
		schema  string
		want    int64
		wantErr bool
	}{
		{"tenant_1", 1, false},
		{"tenant_42", 42, false},
		{"tenant_0", 0, false},
		{"tenant_", 0, true},
		{"tenant_abc", 0, true},
		{"tenant_12abc", 0, true},
		{"tenant_-1", 0, true},
		{"tenant_007", 0, true},
		{"tenant_+5", 0, true},
		{"tenant_ 5", 0, true},
		{"public", 0, true},
		{"mytenant_1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			got, err := TenantID(tt.schema)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TenantID(%q) error = %v, wantErr %v", tt.schema, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("TenantID(%q) = %d, want %d", tt.schema, got, tt.want)
			}
		})
	}
}

func TestIsTenantSchemaRoundTrip(t *testing.T) {
	for _, id := range []int64{0, 1, 7, 42, 999999} {
		name := SchemaName(id)
		if !IsTenantSchema(name) {
			t.Errorf("IsTenantSchema(%q) = false for generated name", name)
		}
		got, err := TenantID(name)
		if err != nil {
			t.Errorf("TenantID(%q) unexpected error: %v", name, err)
		}
		if got != id {
			t.Errorf("TenantID(SchemaName(%d)) = %d", id, got)
		}
	}
}
