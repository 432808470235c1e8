package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	db.MustExec(string(schema))

	return db
}

func createTestSite(t *testing.T, db *sqlx.DB, name string) *domain.Site {
	t.Helper()

	customerRepo := repository.NewCustomerRepository(db)
	siteRepo := repository.NewSiteRepository(db)

	customer := &domain.Customer{Name: name + " customer"}
	require.NoError(t, customerRepo.Create(context.Background(), customer))

	site := &domain.Site{CustomerID: customer.ID, Name: name}
	require.NoError(t, siteRepo.Create(context.Background(), site))
	return site
}

// insertEntryAt writes an entry with an explicit creation timestamp,
// which the normal Create path does not allow.
func insertEntryAt(t *testing.T, db *sqlx.DB, siteID int64, createdAt string) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO entries (site_id, user_id, type, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		siteID, 1, "general", "note", createdAt)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertEntryFile(t *testing.T, db *sqlx.DB, entryID int64, filename string) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO entry_files (entry_id, filename, orig_name, mime) VALUES (?, ?, ?, ?)`,
		entryID, filename, filename, "image/png")
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
