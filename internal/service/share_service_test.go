package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

func TestGetOrCreateShare_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Alpha Well")
	ctx := context.Background()

	first, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	assert.Len(t, first.Token, 48)

	second, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
}

func TestGetOrCreateShare_ScopesAreDistinct(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Bravo Well")
	ctx := context.Background()

	day, err := domain.ParseDate("2024-01-05")
	require.NoError(t, err)
	otherDay, err := domain.ParseDate("2024-01-06")
	require.NoError(t, err)

	siteLink, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	dayLink, err := svc.GetOrCreateShare(ctx, site.ID, &day)
	require.NoError(t, err)
	otherLink, err := svc.GetOrCreateShare(ctx, site.ID, &otherDay)
	require.NoError(t, err)

	assert.NotEqual(t, siteLink.Token, dayLink.Token)
	assert.NotEqual(t, dayLink.Token, otherLink.Token)

	// Re-asking for the day scope keeps its own token stable.
	again, err := svc.GetOrCreateShare(ctx, site.ID, &day)
	require.NoError(t, err)
	assert.Equal(t, dayLink.Token, again.Token)
}

func TestGetOrCreateShare_DeletedSite(t *testing.T) {
	db := newTestDB(t)
	siteRepo := repository.NewSiteRepository(db)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		siteRepo,
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Charlie Well")
	ctx := context.Background()

	require.NoError(t, siteRepo.SoftDelete(ctx, site.ID, time.Now()))

	_, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerify_ScopeMatrix(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Delta Well")
	other := createTestSite(t, db, "Echo Well")
	ctx := context.Background()

	day, err := domain.ParseDate("2024-02-10")
	require.NoError(t, err)
	wrongDay, err := domain.ParseDate("2024-02-11")
	require.NoError(t, err)

	siteLink, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	dayLink, err := svc.GetOrCreateShare(ctx, site.ID, &day)
	require.NoError(t, err)

	// Matching scope succeeds.
	_, err = svc.Verify(ctx, siteLink.Token, site.ID, nil)
	assert.NoError(t, err)
	_, err = svc.Verify(ctx, dayLink.Token, site.ID, &day)
	assert.NoError(t, err)

	// A whole-site token never opens a day page and vice versa.
	_, err = svc.Verify(ctx, siteLink.Token, site.ID, &day)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, dayLink.Token, site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Wrong day, wrong site, unknown or empty token all read the same.
	_, err = svc.Verify(ctx, dayLink.Token, site.ID, &wrongDay)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, siteLink.Token, other.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, "deadbeef", site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, "", site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevoke_MintsFreshTokenAfterward(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Foxtrot Well")
	ctx := context.Background()

	old, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, old.ID))

	_, err = svc.Verify(ctx, old.Token, site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Revoking again is indistinguishable from a link that never was.
	assert.ErrorIs(t, svc.Revoke(ctx, old.ID), domain.ErrNotFound)

	fresh, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, old.Token, fresh.Token)

	// The old token stays dead even though a fresh one exists.
	_, err = svc.Verify(ctx, old.Token, site.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Verify(ctx, fresh.Token, site.ID, nil)
	assert.NoError(t, err)
}

func TestSharedSiteTimeline(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Golf Well")
	ctx := context.Background()

	insertEntryAt(t, db, site.ID, "2024-01-05 10:00:00")
	insertEntryAt(t, db, site.ID, "2024-01-05 09:00:00")
	insertEntryAt(t, db, site.ID, "2024-01-06 08:00:00")

	link, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)

	got, timeline, err := svc.SharedSiteTimeline(ctx, link.Token, site.ID)
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)
	require.Len(t, timeline, 2)
	assert.Equal(t, domain.Date("2024-01-06"), timeline[0].Date)
	assert.Equal(t, domain.Date("2024-01-05"), timeline[1].Date)
	assert.Len(t, timeline[1].Entries, 2)
}

func TestSharedDayEntries_OnlyThatDay(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Hotel Well")
	ctx := context.Background()

	onDay := insertEntryAt(t, db, site.ID, "2024-01-05 10:00:00")
	insertEntryAt(t, db, site.ID, "2024-01-06 08:00:00")

	day, err := domain.ParseDate("2024-01-05")
	require.NoError(t, err)

	link, err := svc.GetOrCreateShare(ctx, site.ID, &day)
	require.NoError(t, err)

	_, entries, err := svc.SharedDayEntries(ctx, link.Token, site.ID, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, onDay, entries[0].ID)
}

func TestResolveFileAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "India Well")
	other := createTestSite(t, db, "Juliet Well")
	ctx := context.Background()

	entry := insertEntryAt(t, db, site.ID, "2024-01-05 10:00:00")
	fileID := insertEntryFile(t, db, entry, "20240105100000_pump.png")

	day, err := domain.ParseDate("2024-01-05")
	require.NoError(t, err)
	wrongDay, err := domain.ParseDate("2024-01-06")
	require.NoError(t, err)

	siteLink, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)
	dayLink, err := svc.GetOrCreateShare(ctx, site.ID, &day)
	require.NoError(t, err)
	wrongDayLink, err := svc.GetOrCreateShare(ctx, site.ID, &wrongDay)
	require.NoError(t, err)
	otherSiteLink, err := svc.GetOrCreateShare(ctx, other.ID, nil)
	require.NoError(t, err)

	// Whole-site token reaches any of the site's files.
	file, err := svc.ResolveFileAccess(ctx, siteLink.Token, fileID)
	require.NoError(t, err)
	assert.Equal(t, fileID, file.ID)

	// Day token reaches files on its day only.
	_, err = svc.ResolveFileAccess(ctx, dayLink.Token, fileID)
	assert.NoError(t, err)
	_, err = svc.ResolveFileAccess(ctx, wrongDayLink.Token, fileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Another site's token, unknown files, empty tokens: all 404-shaped.
	_, err = svc.ResolveFileAccess(ctx, otherSiteLink.Token, fileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ResolveFileAccess(ctx, siteLink.Token, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ResolveFileAccess(ctx, "", fileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveFileAccess_RevocationIsImmediate(t *testing.T) {
	db := newTestDB(t)
	svc := NewShareService(
		repository.NewShareLinkRepository(db),
		repository.NewSiteRepository(db),
		repository.NewEntryRepository(db),
	)
	site := createTestSite(t, db, "Kilo Well")
	ctx := context.Background()

	entry := insertEntryAt(t, db, site.ID, "2024-01-05 10:00:00")
	fileID := insertEntryFile(t, db, entry, "20240105100000_log.pdf")

	link, err := svc.GetOrCreateShare(ctx, site.ID, nil)
	require.NoError(t, err)

	_, err = svc.ResolveFileAccess(ctx, link.Token, fileID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, link.ID))

	_, err = svc.ResolveFileAccess(ctx, link.Token, fileID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
