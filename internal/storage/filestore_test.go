package storage

import (
	"bytes"
	"io"
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellatlas/internal/domain"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestGenerateName(t *testing.T) {
	store := newStore(t)

	name := store.GenerateName("pump test report.pdf")
	assert.Regexp(t, regexp.MustCompile(`^\d{20}_pump_test_report\.pdf$`), name)

	// Directory components in the client-supplied name are dropped.
	name = store.GenerateName("../../etc/passwd")
	assert.Regexp(t, regexp.MustCompile(`^\d{20}_passwd$`), name)
}

func TestSaveOpenRemove(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("x.png", bytes.NewReader([]byte("content"))))

	f, err := store.Open("x.png")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, store.Remove("x.png"))
	_, err = store.Open("x.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Removing twice is a no-op.
	assert.NoError(t, store.Remove("x.png"))
}

func TestOpen_ConfinedToStore(t *testing.T) {
	store := newStore(t)

	_, err := store.Open("../outside.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalk(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("a.png", bytes.NewReader([]byte("a"))))
	require.NoError(t, store.Save("b.pdf", bytes.NewReader([]byte("b"))))

	var seen []string
	require.NoError(t, store.Walk(func(path string, _ fs.DirEntry) error {
		seen = append(seen, path)
		return nil
	}))

	assert.Len(t, seen, 2)
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("report.pdf"))
	assert.True(t, AllowedExtension("PHOTO.JPG"))
	assert.True(t, AllowedExtension("clip.mov"))
	assert.False(t, AllowedExtension("malware.exe"))
	assert.False(t, AllowedExtension("noextension"))
	assert.False(t, AllowedExtension("archive.zip"))
}
