package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"wellatlas/internal/domain"
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

func seedSite(t *testing.T, db *sqlx.DB, name, jobNumber string) *domain.Site {
	t.Helper()

	customer := &domain.Customer{Name: name + " customer"}
	require.NoError(t, NewCustomerRepository(db).Create(context.Background(), customer))

	site := &domain.Site{CustomerID: customer.ID, Name: name, JobNumber: jobNumber}
	require.NoError(t, NewSiteRepository(db).Create(context.Background(), site))
	return site
}
