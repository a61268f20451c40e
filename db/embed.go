// Package db carries the embedded database migration files.
package db

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationFiles returns the migration file names in lexical order. Files
// are named NNN_description.sql, so lexical order is application order.
func MigrationFiles() ([]string, error) {
	entries, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

// ReadMigration returns the contents of one migration file.
func ReadMigration(name string) ([]byte, error) {
	return migrations.ReadFile(name)
}
