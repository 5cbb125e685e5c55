// Package testutil carries the shared scaffolding for package tests:
// telemetry/logging setup, a throwaway history database, and random
// identifiers for store keys.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mazen160/go-random"

	"github.com/cigarpricescout/cigar-price-scout/lib/configutil/sqldb"
	"github.com/cigarpricescout/cigar-price-scout/lib/telemetry"
)

// Setup initializes logging and telemetry for a test binary and
// registers the teardown.
func Setup(t testing.TB, serviceName string) {
	t.Cleanup(telemetry.SetupForTesting(t, serviceName))
}

// RandomID returns a short random identifier, for store keys that must
// not collide across parallel tests.
func RandomID(t testing.TB) string {
	id, err := random.String(8)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// TempSQLite opens a fresh sqlite database under the test's temp
// directory with the given schema applied, closed on cleanup.
func TempSQLite(t testing.TB, schema string) *sql.DB {
	db, err := sqldb.Struct{
		File: filepath.Join(t.TempDir(), "test.db"),
	}.OpenDB(schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
