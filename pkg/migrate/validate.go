package migrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every SQL file in dir for a well-formed goose filename
// and the Up/Down section markers. Versions must be unique within the dir.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if err := checkMigrationFile(dir, entry.Name(), versions); err != nil {
			return err
		}
	}
	return nil
}

func checkMigrationFile(dir, name string, versions map[string]string) error {
	parts := migrationNameRe.FindStringSubmatch(name)
	if parts == nil {
		return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}

	version := parts[1]
	if other, dup := versions[version]; dup {
		return fmt.Errorf("duplicate migration version %s in %q and %q", version, other, name)
	}
	versions[version] = name

	body, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read file %q: %w", filepath.Join(dir, name), err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !bytes.Contains(body, []byte(marker)) {
			return fmt.Errorf("migration %q missing %q", name, marker)
		}
	}
	return nil
}
