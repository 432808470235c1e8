package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"wellatlas/internal/domain"
	"wellatlas/internal/storage"
)

// RemoteStorage receives finished archives. Its configuration and auth
// are its own concern; the backup service only hands over bytes and a
// name.
type RemoteStorage interface {
	UploadBytes(key string, data []byte) error
}

// BackupService builds point-in-time ZIP archives of the database file
// and the upload dir. Archive paths are relative to the data dir, so
// restoring is a straight extraction back onto it. The local build and
// the remote push are independent operations: a push failure never
// touches a local archive, and vice versa.
type BackupService struct {
	dataDir string
	dbPath  string
	files   *storage.FileStore
	remote  RemoteStorage
}

func NewBackupService(dataDir, dbPath string, files *storage.FileStore, remote RemoteStorage) *BackupService {
	return &BackupService{
		dataDir: dataDir,
		dbPath:  dbPath,
		files:   files,
		remote:  remote,
	}
}

// WriteArchive streams the ZIP to w. A missing database file is skipped,
// not an error; everything currently in the file store is included even
// when no entry references it anymore.
func (s *BackupService) WriteArchive(ctx context.Context, w io.Writer) error {
	z := zip.NewWriter(w)

	if err := s.addDatabase(z); err != nil {
		return err
	}

	err := s.files.Walk(func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		arc, err := filepath.Rel(s.dataDir, path)
		if err != nil {
			return fmt.Errorf("failed to build archive path for %s: %w", path, err)
		}
		return s.addFile(z, path, filepath.ToSlash(arc))
	})
	if err != nil {
		return fmt.Errorf("failed to archive file store: %w", err)
	}

	return z.Close()
}

func (s *BackupService) addDatabase(z *zip.Writer) error {
	if _, err := os.Stat(s.dbPath); err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Backup] Database file absent, skipping: %s", s.dbPath)
			return nil
		}
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	return s.addFile(z, s.dbPath, filepath.Base(s.dbPath))
}

func (s *BackupService) addFile(z *zip.Writer, path, arcname string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	entry, err := z.Create(arcname)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", arcname, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", arcname, err)
	}
	return nil
}

// ArchiveName stamps archives with the UTC build time.
func (s *BackupService) ArchiveName() string {
	return fmt.Sprintf("wellatlas-backup-%s.zip", time.Now().UTC().Format("20060102-150405"))
}

// PushToRemote builds an archive in memory and hands it to the remote
// provider. Returns the uploaded object name.
func (s *BackupService) PushToRemote(ctx context.Context) (string, error) {
	if s.remote == nil {
		return "", fmt.Errorf("%w: remote backup not configured", domain.ErrInvalidInput)
	}

	var buf bytes.Buffer
	if err := s.WriteArchive(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to build archive: %w", err)
	}

	name := s.ArchiveName()
	if err := s.remote.UploadBytes(name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	log.Printf("[Backup] Uploaded %s (%d bytes)", name, buf.Len())
	return name, nil
}
