package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
	"wellatlas/internal/storage"
)

type EntryService struct {
	entryRepo *repository.EntryRepository
	siteRepo  *repository.SiteRepository
	files     *storage.FileStore
}

// FileUpload is one attachment handed in with a new entry.
type FileUpload struct {
	Name string
	MIME string
	Data io.Reader
}

func NewEntryService(
	entryRepo *repository.EntryRepository,
	siteRepo *repository.SiteRepository,
	files *storage.FileStore,
) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		siteRepo:  siteRepo,
		files:     files,
	}
}

// AddEntry records a new entry against an active site and stores its
// attachments. Uploads with a disallowed extension are skipped, not
// fatal, matching form behavior where one bad file should not lose the
// note. The entry itself is immutable once written.
func (s *EntryService) AddEntry(ctx context.Context, siteID, userID int64, entryType domain.EntryType, note string, uploads []FileUpload) (*domain.Entry, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Deleted() {
		return nil, domain.ErrNotFound
	}

	if entryType == "" {
		entryType = domain.EntryTypeGeneral
	}
	if !entryType.Valid() {
		return nil, fmt.Errorf("%w: unknown entry type %q", domain.ErrInvalidInput, entryType)
	}

	entry := &domain.Entry{
		SiteID: siteID,
		UserID: userID,
		Type:   entryType,
		Note:   strings.TrimSpace(note),
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	for _, up := range uploads {
		if up.Name == "" || !storage.AllowedExtension(up.Name) {
			log.Printf("[EntryService] Skipping upload with disallowed name: %q", up.Name)
			continue
		}

		stored := s.files.GenerateName(up.Name)
		if err := s.files.Save(stored, up.Data); err != nil {
			return nil, fmt.Errorf("failed to store upload %q: %w", up.Name, err)
		}

		file := &domain.EntryFile{
			EntryID:  entry.ID,
			Filename: stored,
			OrigName: up.Name,
			MIME:     up.MIME,
		}
		if err := s.entryRepo.AddFile(ctx, file); err != nil {
			return nil, fmt.Errorf("failed to record upload %q: %w", up.Name, err)
		}
		entry.Files = append(entry.Files, *file)
	}

	return entry, nil
}

// OpenFile returns an attachment's record and a reader over its bytes
// for authenticated download.
func (s *EntryService) OpenFile(ctx context.Context, fileID int64) (*domain.EntryFile, *os.File, error) {
	file, err := s.entryRepo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.files.Open(file.Filename)
	if err != nil {
		return nil, nil, err
	}
	return file, f, nil
}

func (s *EntryService) GetFile(ctx context.Context, fileID int64) (*domain.EntryFile, error) {
	return s.entryRepo.GetFileByID(ctx, fileID)
}

// UpdateFileComment is the single mutation allowed on entry data after
// creation.
func (s *EntryService) UpdateFileComment(ctx context.Context, fileID int64, comment string) error {
	return s.entryRepo.UpdateFileComment(ctx, fileID, comment)
}
