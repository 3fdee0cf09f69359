package postgres

import (
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	paths, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("enumerate migrations: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no migrations embedded")
	}
	if !sort.StringsAreSorted(paths) {
		t.Fatalf("glob order must be lexical, got %v", paths)
	}

	for _, path := range paths {
		raw, err := migrationFS.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		// With no version table, every migration must tolerate re-running.
		if !strings.Contains(strings.ToUpper(string(raw)), "IF NOT EXISTS") {
			t.Fatalf("%s is not re-runnable", path)
		}
	}
}
