package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"wellatlas/internal/domain"
)

type SiteRepository struct {
	db *sqlx.DB
}

func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	query := `
        INSERT INTO sites (
            customer_id, name, job_number, latitude, longitude,
            address, category, status, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		site.CustomerID,
		site.Name,
		site.JobNumber,
		site.Latitude,
		site.Longitude,
		site.Address,
		site.Category,
		site.Status,
		site.Notes,
	).Scan(&site.ID, &site.CreatedAt)
}

// GetByID returns the site regardless of its deleted state; callers that
// only want active sites check Deleted() themselves.
func (r *SiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	var site domain.Site
	query := `SELECT * FROM sites WHERE id = $1`

	if err := r.db.GetContext(ctx, &site, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// Search lists active sites, optionally filtered by a case-insensitive
// match on name or job number.
func (r *SiteRepository) Search(ctx context.Context, q string) ([]domain.Site, error) {
	var sites []domain.Site

	if q == "" {
		query := `SELECT * FROM sites WHERE deleted_at IS NULL ORDER BY name ASC`
		if err := r.db.SelectContext(ctx, &sites, query); err != nil {
			return nil, err
		}
		return sites, nil
	}

	query := `
        SELECT * FROM sites
        WHERE deleted_at IS NULL
        AND (name LIKE $1 COLLATE NOCASE OR job_number LIKE $1 COLLATE NOCASE)
        ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &sites, query, "%"+q+"%"); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *SiteRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Site, error) {
	var sites []domain.Site
	query := `
        SELECT * FROM sites
        WHERE customer_id = $1 AND deleted_at IS NULL
        ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &sites, query, customerID); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *SiteRepository) ListDeleted(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	query := `SELECT * FROM sites WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`

	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, err
	}
	return sites, nil
}

// Pins projects every active site with coordinates onto map markers.
func (r *SiteRepository) Pins(ctx context.Context) ([]domain.Pin, error) {
	var pins []domain.Pin
	query := `
        SELECT id, name, job_number, latitude, longitude FROM sites
        WHERE deleted_at IS NULL
        AND latitude IS NOT NULL AND longitude IS NOT NULL
        ORDER BY id ASC`

	if err := r.db.SelectContext(ctx, &pins, query); err != nil {
		return nil, err
	}
	return pins, nil
}

func (r *SiteRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE sites SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

func (r *SiteRepository) Restore(ctx context.Context, id int64) error {
	query := `UPDATE sites SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
