package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"wellatlas/internal/domain"
)

type EntryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
        INSERT INTO entries (site_id, user_id, type, note)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		entry.SiteID,
		entry.UserID,
		entry.Type,
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListBySite returns the site's entries newest first, files attached.
func (r *EntryRepository) ListBySite(ctx context.Context, siteID int64) ([]domain.Entry, error) {
	var entries []domain.Entry
	query := `SELECT * FROM entries WHERE site_id = $1 ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &entries, query, siteID); err != nil {
		return nil, err
	}
	return r.attachFiles(ctx, entries)
}

// ListBySiteOnDate returns the entries created on one UTC calendar date,
// newest first.
func (r *EntryRepository) ListBySiteOnDate(ctx context.Context, siteID int64, date domain.Date) ([]domain.Entry, error) {
	var entries []domain.Entry
	query := `
        SELECT * FROM entries
        WHERE site_id = $1 AND date(created_at) = $2
        ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &entries, query, siteID, date.String()); err != nil {
		return nil, err
	}
	return r.attachFiles(ctx, entries)
}

func (r *EntryRepository) attachFiles(ctx context.Context, entries []domain.Entry) ([]domain.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	query, args, err := sqlx.In(
		`SELECT * FROM entry_files WHERE entry_id IN (?) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build files query: %w", err)
	}

	var files []domain.EntryFile
	if err := r.db.SelectContext(ctx, &files, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byEntry := make(map[int64][]domain.EntryFile, len(entries))
	for _, f := range files {
		byEntry[f.EntryID] = append(byEntry[f.EntryID], f)
	}
	for i := range entries {
		entries[i].Files = byEntry[entries[i].ID]
	}
	return entries, nil
}

func (r *EntryRepository) AddFile(ctx context.Context, file *domain.EntryFile) error {
	query := `
        INSERT INTO entry_files (entry_id, filename, orig_name, mime, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`

	return r.db.QueryRowContext(
		ctx,
		query,
		file.EntryID,
		file.Filename,
		file.OrigName,
		file.MIME,
		file.Comment,
	).Scan(&file.ID)
}

func (r *EntryRepository) GetFileByID(ctx context.Context, id int64) (*domain.EntryFile, error) {
	var file domain.EntryFile
	query := `SELECT * FROM entry_files WHERE id = $1`

	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// GetFileContext resolves an attachment together with its owning entry,
// the chain the share validator walks on every anonymous file request.
func (r *EntryRepository) GetFileContext(ctx context.Context, fileID int64) (*domain.EntryFile, *domain.Entry, error) {
	file, err := r.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	var entry domain.Entry
	query := `SELECT * FROM entries WHERE id = $1`
	if err := r.db.GetContext(ctx, &entry, query, file.EntryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	return file, &entry, nil
}

func (r *EntryRepository) UpdateFileComment(ctx context.Context, fileID int64, comment string) error {
	query := `UPDATE entry_files SET comment = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, comment, fileID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}
