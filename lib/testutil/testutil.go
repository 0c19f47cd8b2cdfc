package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"refuel/lib/sqliteutil"
	"refuel/lib/telemetry"
	"testing"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

// SetupService sets up telemetry and a migrated database for a test. The database
// is closed when the test ends.
func SetupService(t testing.TB, params ServiceParams) ServiceResult {
	t.Helper()
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	if params.DbSchema == "" {
		return ServiceResult{}
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	db, err := sqliteutil.OpenAndMigrateDB(context.Background(), dbpath, "", params.DbSchema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return ServiceResult{
		DB: db,
	}
}
