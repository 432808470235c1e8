package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"wellatlas/internal/domain"
)

type ShareLinkRepository struct {
	db *sqlx.DB
}

func NewShareLinkRepository(db *sqlx.DB) *ShareLinkRepository {
	return &ShareLinkRepository{db: db}
}

// GetActiveByScope returns the one non-revoked link for (site, scope),
// or nil when none exists. A nil date means the whole-site scope; the
// two scopes never match each other.
func (r *ShareLinkRepository) GetActiveByScope(ctx context.Context, siteID int64, date *domain.Date) (*domain.ShareLink, error) {
	query := `
        SELECT * FROM share_links
        WHERE site_id = $1 AND revoked = 0 AND date IS NULL`
	args := []interface{}{siteID}

	if date != nil {
		query = `
        SELECT * FROM share_links
        WHERE site_id = $1 AND revoked = 0 AND date = $2`
		args = append(args, date.String())
	}

	var link domain.ShareLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// Insert adds a new active link, backing off silently when another
// request already created one for the same scope. The partial unique
// index on (site_id, IFNULL(date,'')) WHERE revoked = 0 makes the
// lookup-then-insert race safe: at most one row wins, and callers
// re-read the scope afterwards to pick up the winner.
func (r *ShareLinkRepository) Insert(ctx context.Context, link *domain.ShareLink) error {
	query := `
        INSERT OR IGNORE INTO share_links (id, site_id, date, token, revoked)
        VALUES ($1, $2, $3, $4, 0)`

	var date interface{}
	if link.Date != nil {
		date = link.Date.String()
	}

	_, err := r.db.ExecContext(ctx, query, link.ID, link.SiteID, date, link.Token)
	return err
}

// FindForVerify returns the link matching token, site and exact scope,
// provided it has not been revoked. Every mismatch — unknown token,
// wrong site, wrong scope, revoked — comes back as ErrNotFound, so an
// anonymous caller cannot tell the cases apart.
func (r *ShareLinkRepository) FindForVerify(ctx context.Context, token string, siteID int64, date *domain.Date) (*domain.ShareLink, error) {
	query := `
        SELECT * FROM share_links
        WHERE token = $1 AND site_id = $2 AND revoked = 0 AND date IS NULL`
	args := []interface{}{token, siteID}

	if date != nil {
		query = `
        SELECT * FROM share_links
        WHERE token = $1 AND site_id = $2 AND revoked = 0 AND date = $3`
		args = append(args, date.String())
	}

	var link domain.ShareLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// FindByTokenAndSite matches token and site in either scope. File access
// checks the date scope against the owning entry afterwards.
func (r *ShareLinkRepository) FindByTokenAndSite(ctx context.Context, token string, siteID int64) (*domain.ShareLink, error) {
	var link domain.ShareLink
	query := `
        SELECT * FROM share_links
        WHERE token = $1 AND site_id = $2 AND revoked = 0`

	if err := r.db.GetContext(ctx, &link, query, token, siteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShareLink, error) {
	var link domain.ShareLink
	query := `SELECT * FROM share_links WHERE id = $1`

	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) ListBySite(ctx context.Context, siteID int64) ([]domain.ShareLink, error) {
	var links []domain.ShareLink
	query := `SELECT * FROM share_links WHERE site_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &links, query, siteID); err != nil {
		return nil, err
	}
	return links, nil
}

// Revoke is terminal. Revoking twice reports ErrNotFound the second
// time, the same as revoking a link that never existed.
func (r *ShareLinkRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE share_links SET revoked = 1 WHERE id = $1 AND revoked = 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}
