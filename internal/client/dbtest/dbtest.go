// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/dmitrijs2005/marketsales/internal/client/client"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// Open returns a private in-memory database with the client schema applied.
// The database is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}
