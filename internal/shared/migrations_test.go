package shared

import (
	"database/sql"
	"strings"
	"testing"
)

func newMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}

	for i, migration := range migrations {
		if migration.Up == "" || migration.Down == "" {
			t.Errorf("migration %d missing up or down script", migration.Version)
		}
		if i > 0 && migrations[i-1].Version >= migration.Version {
			t.Error("expected migrations sorted by version")
		}
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("creates the schema", func(t *testing.T) {
		db := newMigratedDB(t)

		for _, table := range []string{"users", "task_snapshots", "users_sequence", "task_snapshots_sequence"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := newMigratedDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run: %v", err)
		}

		version, err := getCurrentVersion(db)
		if err != nil {
			t.Fatalf("get version: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("seeds the sequence tables", func(t *testing.T) {
		db := newMigratedDB(t)

		var value int
		if err := db.QueryRow("SELECT value FROM users_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("expected seeded users sequence: %v", err)
		}
		if value != 0 {
			t.Errorf("expected sequence seeded to 0, got %d", value)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("drops the schema", func(t *testing.T) {
		db := newMigratedDB(t)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback: %v", err)
		}

		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='users'").Scan(&name)
		if err != sql.ErrNoRows {
			t.Errorf("expected users table to be dropped, got %v", err)
		}

		version, err := getCurrentVersion(db)
		if err != nil {
			t.Fatalf("get version: %v", err)
		}
		if version != -1 {
			t.Errorf("expected no applied migrations, got version %d", version)
		}
	})

	t.Run("fails with nothing to roll back", func(t *testing.T) {
		db := newMigratedDB(t)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("first rollback: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when no migrations remain")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	stmt := "CREATE TABLE t ( -- comment\n  id TEXT -- another\n)"
	got := removeComments(stmt)
	if strings.Contains(got, "--") {
		t.Errorf("expected comments stripped, got %q", got)
	}
	if !strings.Contains(got, "CREATE TABLE t") {
		t.Errorf("expected statement preserved, got %q", got)
	}
}
