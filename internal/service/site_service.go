package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

type SiteService struct {
	siteRepo     *repository.SiteRepository
	customerRepo *repository.CustomerRepository
	entryRepo    *repository.EntryRepository
}

// SiteDetail is a site together with its day-grouped timeline.
type SiteDetail struct {
	Site     *domain.Site `json:"site"`
	Timeline []DayGroup   `json:"timeline"`
}

func NewSiteService(
	siteRepo *repository.SiteRepository,
	customerRepo *repository.CustomerRepository,
	entryRepo *repository.EntryRepository,
) *SiteService {
	return &SiteService{
		siteRepo:     siteRepo,
		customerRepo: customerRepo,
		entryRepo:    entryRepo,
	}
}

func (s *SiteService) Create(ctx context.Context, site *domain.Site) error {
	site.Name = strings.TrimSpace(site.Name)
	if site.Name == "" {
		return fmt.Errorf("%w: site name required", domain.ErrInvalidInput)
	}
	if _, err := s.customerRepo.GetByID(ctx, site.CustomerID); err != nil {
		return err
	}
	return s.siteRepo.Create(ctx, site)
}

// Detail returns an active site with its grouped timeline. Soft-deleted
// sites are invisible here, same as not existing.
func (s *SiteService) Detail(ctx context.Context, id int64) (*SiteDetail, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site.Deleted() {
		return nil, domain.ErrNotFound
	}

	entries, err := s.entryRepo.ListBySite(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SiteDetail{Site: site, Timeline: GroupEntriesByDay(entries)}, nil
}

func (s *SiteService) Search(ctx context.Context, q string) ([]domain.Site, error) {
	return s.siteRepo.Search(ctx, strings.TrimSpace(q))
}

func (s *SiteService) Pins(ctx context.Context) ([]domain.Pin, error) {
	return s.siteRepo.Pins(ctx)
}

// Delete moves a site to the deleted list. The site and everything under
// it stays in the database and can be restored later.
func (s *SiteService) Delete(ctx context.Context, id int64) error {
	return s.siteRepo.SoftDelete(ctx, id, time.Now())
}

func (s *SiteService) Restore(ctx context.Context, id int64) error {
	return s.siteRepo.Restore(ctx, id)
}

func (s *SiteService) ListDeleted(ctx context.Context) ([]domain.Site, error) {
	return s.siteRepo.ListDeleted(ctx)
}
