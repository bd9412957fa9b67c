// Package schema contains embedded migration files.
package schema

import (
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Directories inside the embedded filesystems.
const (
	PGMigrationsDir     = "pgmigrations"
	SQLiteMigrationsDir = "sqlitemigrations"
)

// ErrChecksumMismatch means an applied migration file was edited afterwards.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// PGMigrationsFS contains all SQL migration files from pgmigrations directory.
//
//go:embed pgmigrations/*.sql
var PGMigrationsFS embed.FS

// SQLiteMigrationsFS contains the SQLite flavour of the same schema.
//
//go:embed sqlitemigrations/*.sql
var SQLiteMigrationsFS embed.FS

// Files returns the sorted .sql file names found in dir.
func Files(migrationsFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}

// Checksum is the hex sha256 of a migration body. Applied migrations are
// recorded with it so later edits to the file are detected.
func Checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
