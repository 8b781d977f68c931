package migration

import (
	"context"
	"strings"
	"testing"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Migrations() {
		if seen[m.Name] {
			t.Errorf("duplicate migration %q", m.Name)
		}
		seen[m.Name] = true
		if !strings.Contains(m.SQL, "IF NOT EXISTS") {
			t.Errorf("migration %q is not idempotent", m.Name)
		}
	}
}

func TestRunMigrationsWithoutDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}
