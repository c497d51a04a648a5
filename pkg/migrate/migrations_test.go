package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spot2go/spot2go-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}

func TestInitMigrationContainsCoreSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE user_role AS ENUM ('customer', 'owner', 'admin')",
		"CREATE TYPE place_status AS ENUM ('pending', 'approved', 'rejected')",
		"CREATE TYPE booking_status AS ENUM ('pending', 'paid', 'cancelled')",
		"CREATE TABLE users",
		"CREATE TABLE places",
		"CREATE TABLE bookings",
		"CREATE TABLE reviews",
		"CREATE TABLE bookmarks",
		"CHECK (rating BETWEEN 1 AND 5)",
		"CREATE UNIQUE INDEX ux_user_devices_user_token",
		"CREATE TABLE outbox_events",
		"DROP TABLE IF EXISTS users",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
