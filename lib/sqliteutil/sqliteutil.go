// Package sqliteutil opens the sqlite databases used by refuel, either local files
// through modernc's pure go driver or remote libsql databases.
package sqliteutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// IsRemote reports whether the location points to a libsql server instead of a local file.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "libsql://") ||
		strings.HasPrefix(location, "https://") ||
		strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "wss://") ||
		strings.HasPrefix(location, "ws://")
}

func openRemote(location, authToken string) (*sql.DB, error) {
	if authToken != "" {
		u, err := url.Parse(location)
		if err != nil {
			return nil, err
		}
		query := u.Query()
		query.Set("authToken", authToken)
		u.RawQuery = query.Encode()
		location = u.String()
	}
	return sql.Open("libsql", location)
}

func openLocal(path string) (*sql.DB, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database at location, a file path or a libsql url. The auth token
// is only used for libsql urls.
func OpenDB(location, authToken string) (*sql.DB, error) {
	if location == "" {
		return nil, wrapOpenDB(fmt.Errorf("a database location was not specified"))
	}

	var db *sql.DB
	var err error
	if IsRemote(location) {
		db, err = openRemote(location, authToken)
	} else {
		db, err = openLocal(location)
	}
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

// Migrate applies a schema made of idempotent statements (CREATE ... IF NOT EXISTS).
// Statements are executed one at a time since not every driver accepts several
// statements in a single call.
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	for _, stmt := range splitStatements(schema) {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("migrate db: %w", err)
		}
	}
	return nil
}

// OpenAndMigrateDB is OpenDB followed by Migrate.
func OpenAndMigrateDB(ctx context.Context, location, authToken, schema string) (*sql.DB, error) {
	db, err := OpenDB(location, authToken)
	if err != nil {
		return nil, err
	}
	err = Migrate(ctx, db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func splitStatements(schema string) []string {
	var lines []string
	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
