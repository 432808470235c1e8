// Package storage implements the on-disk file store for entry
// attachments. Files are addressed purely by their generated name; the
// rest of the app never touches paths under the upload dir directly.
package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wellatlas/internal/domain"
)

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root of the file store, used by the backup archiver.
func (s *FileStore) Dir() string { return s.dir }

// GenerateName builds a collision-resistant storage name from the UTC
// timestamp and the sanitized original name.
func (s *FileStore) GenerateName(origName string) string {
	stamp := time.Now().UTC().Format("20060102150405.000000")
	stamp = strings.ReplaceAll(stamp, ".", "")
	safe := strings.ReplaceAll(filepath.Base(origName), " ", "_")
	return fmt.Sprintf("%s_%s", stamp, safe)
}

func (s *FileStore) Save(name string, r io.Reader) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *FileStore) Open(name string) (*os.File, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *FileStore) Remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Path exposes the absolute location of a stored file for collaborators
// that hand the path to external tools (HLS preparation).
func (s *FileStore) Path(name string) string { return s.path(name) }

// Walk visits every regular file currently in the store, including ones
// no entry references anymore.
func (s *FileStore) Walk(fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return fn(path, d)
	})
}

// path confines stored names to the upload dir.
func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".mp4":  true,
	".mov":  true,
}

// AllowedExtension reports whether the original filename carries one of
// the accepted attachment extensions.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}
