package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellatlas/internal/domain"
)

func mustDate(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestShareLinkRepository_InsertLosesRaceSilently(t *testing.T) {
	db := newTestDB(t)
	repo := NewShareLinkRepository(db)
	ctx := context.Background()
	site := seedSite(t, db, "Race Well", "")

	winner := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Token: "aaaa"}
	require.NoError(t, repo.Insert(ctx, winner))

	// Same scope: the insert is ignored, the winner's row stands.
	loser := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Token: "bbbb"}
	require.NoError(t, repo.Insert(ctx, loser))

	link, err := repo.GetActiveByScope(ctx, site.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "aaaa", link.Token)

	// A different scope is a different row.
	day := mustDate(t, "2024-05-01")
	dayLink := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Date: day, Token: "cccc"}
	require.NoError(t, repo.Insert(ctx, dayLink))

	link, err = repo.GetActiveByScope(ctx, site.ID, day)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "cccc", link.Token)
}

func TestShareLinkRepository_RevokedScopeCanBeRefilled(t *testing.T) {
	db := newTestDB(t)
	repo := NewShareLinkRepository(db)
	ctx := context.Background()
	site := seedSite(t, db, "Refill Well", "")

	old := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Token: "old-token"}
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Revoke(ctx, old.ID))

	// The unique index only covers active rows, so the scope is free
	// again.
	fresh := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Token: "fresh-token"}
	require.NoError(t, repo.Insert(ctx, fresh))

	link, err := repo.GetActiveByScope(ctx, site.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "fresh-token", link.Token)

	// Both rows remain for the site's admin listing.
	links, err := repo.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestShareLinkRepository_GetActiveByScope_None(t *testing.T) {
	db := newTestDB(t)
	repo := NewShareLinkRepository(db)
	site := seedSite(t, db, "Empty Well", "")

	link, err := repo.GetActiveByScope(context.Background(), site.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestShareLinkRepository_RevokeTwice(t *testing.T) {
	db := newTestDB(t)
	repo := NewShareLinkRepository(db)
	ctx := context.Background()
	site := seedSite(t, db, "Twice Well", "")

	link := &domain.ShareLink{ID: uuid.New(), SiteID: site.ID, Token: "tok"}
	require.NoError(t, repo.Insert(ctx, link))

	require.NoError(t, repo.Revoke(ctx, link.ID))
	assert.ErrorIs(t, repo.Revoke(ctx, link.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Revoke(ctx, uuid.New()), domain.ErrNotFound)
}
