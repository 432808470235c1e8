package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

// ShareService mints and validates the capability tokens behind public
// site links. It is the only component enforcing access control for
// anonymous requests, so every check runs against the database on every
// call; nothing about a token's validity is ever cached.
type ShareService struct {
	shareRepo *repository.ShareLinkRepository
	siteRepo  *repository.SiteRepository
	entryRepo *repository.EntryRepository
}

func NewShareService(
	shareRepo *repository.ShareLinkRepository,
	siteRepo *repository.SiteRepository,
	entryRepo *repository.EntryRepository,
) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		siteRepo:  siteRepo,
		entryRepo: entryRepo,
	}
}

// generateToken returns 24 random bytes as 48 hex characters, enough
// entropy that guessing a live token is infeasible.
func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateShare returns the active link for (site, scope), minting
// one on first demand. Repeated calls for the same scope return the same
// token; two concurrent first calls resolve to a single winning row via
// the scope's unique index, never to an error.
func (s *ShareService) GetOrCreateShare(ctx context.Context, siteID int64, date *domain.Date) (*domain.ShareLink, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Deleted() {
		return nil, domain.ErrNotFound
	}

	link, err := s.shareRepo.GetActiveByScope(ctx, siteID, date)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return link, nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	candidate := &domain.ShareLink{
		ID:     uuid.New(),
		SiteID: siteID,
		Date:   date,
		Token:  token,
	}
	if err := s.shareRepo.Insert(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}

	// Re-read the scope: if a concurrent call won the insert race, the
	// winner's row is the one to hand out.
	link, err = s.shareRepo.GetActiveByScope(ctx, siteID, date)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("share link vanished after insert")
	}
	return link, nil
}

// Verify returns the link only when the token, site and exact scope all
// match and the link is not revoked. A whole-site token never satisfies
// a day request and vice versa. Any failure is domain.ErrNotFound; the
// caller cannot probe which check failed.
func (s *ShareService) Verify(ctx context.Context, token string, siteID int64, date *domain.Date) (*domain.ShareLink, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	return s.shareRepo.FindForVerify(ctx, token, siteID, date)
}

// SharedSiteTimeline serves the whole-site public page: token must carry
// the whole-site scope for this site, and the site must still be active.
func (s *ShareService) SharedSiteTimeline(ctx context.Context, token string, siteID int64) (*domain.Site, []DayGroup, error) {
	if _, err := s.Verify(ctx, token, siteID, nil); err != nil {
		return nil, nil, domain.ErrNotFound
	}

	site, err := s.activeSite(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.entryRepo.ListBySite(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}
	return site, GroupEntriesByDay(entries), nil
}

// SharedDayEntries serves the single-day public page under a day-scoped
// token.
func (s *ShareService) SharedDayEntries(ctx context.Context, token string, siteID int64, date domain.Date) (*domain.Site, []domain.Entry, error) {
	if _, err := s.Verify(ctx, token, siteID, &date); err != nil {
		return nil, nil, domain.ErrNotFound
	}

	site, err := s.activeSite(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.entryRepo.ListBySiteOnDate(ctx, siteID, date)
	if err != nil {
		return nil, nil, err
	}
	return site, entries, nil
}

// ResolveFileAccess is the authorization gate for serving attachment
// bytes to anonymous callers. It walks file -> entry -> site, requires a
// live link for the token on that site, and for day-scoped links
// requires the entry's creation date to equal the scope date. It runs in
// full on every request so that revocation takes effect immediately.
func (s *ShareService) ResolveFileAccess(ctx context.Context, token string, fileID int64) (*domain.EntryFile, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}

	file, entry, err := s.entryRepo.GetFileContext(ctx, fileID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	link, err := s.shareRepo.FindByTokenAndSite(ctx, token, entry.SiteID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if link.Date != nil && *link.Date != entry.Date() {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

// Revoke ends a link for good. A subsequent GetOrCreateShare for the
// same scope mints a fresh token; the revoked one stays dead.
func (s *ShareService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.shareRepo.Revoke(ctx, id)
}

func (s *ShareService) ListForSite(ctx context.Context, siteID int64) ([]domain.ShareLink, error) {
	return s.shareRepo.ListBySite(ctx, siteID)
}

func (s *ShareService) activeSite(ctx context.Context, siteID int64) (*domain.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if site.Deleted() {
		return nil, domain.ErrNotFound
	}
	return site, nil
}
