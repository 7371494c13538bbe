package database

import "testing"

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"001_initial_schema.sql", 1},
		{"012_add_jobs_index.sql", 12},
		{"embed.go", 0},
		{"abc_schema.sql", 0},
		{"1_short.sql", 0},
	}

	for _, tc := range tests {
		if got := migrationVersion(tc.name); got != tc.want {
			t.Errorf("migrationVersion(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}
