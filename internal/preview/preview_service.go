// Package preview generates JPEG thumbnails for entry attachments:
// scaled-down images, first pages of PDFs, and still frames from videos.
// Previews are cached on disk next to the data dir and regenerated on
// demand; the cache is disposable and never part of backups.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/bimg"

	"wellatlas/internal/domain"
	"wellatlas/internal/storage"
)

const (
	maxImageSize = 1024
	jpegQuality  = 85
)

type Service struct {
	files    *storage.FileStore
	cacheDir string
}

func NewService(files *storage.FileStore, cacheDir string) (*Service, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preview cache dir: %w", err)
	}
	return &Service{files: files, cacheDir: cacheDir}, nil
}

// GetOrGeneratePreview returns the cached preview for an attachment,
// generating it on first request.
func (s *Service) GetOrGeneratePreview(ctx context.Context, file *domain.EntryFile) ([]byte, error) {
	cachePath := filepath.Join(s.cacheDir, fmt.Sprintf("%d.jpg", file.ID))
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	src, err := s.files.Open(file.Filename)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	var previewData []byte
	switch {
	case strings.HasPrefix(file.MIME, "image/"):
		previewData, err = s.optimizeImage(data)
	case file.MIME == "application/pdf":
		previewData, err = s.generatePDFPreview(data)
	case strings.HasPrefix(file.MIME, "video/"):
		previewData, err = s.generateVideoPreview(ctx, s.files.Path(file.Filename))
	default:
		return nil, fmt.Errorf("%w: unsupported preview type %s", domain.ErrInvalidInput, file.MIME)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview: %w", err)
	}

	if err := os.WriteFile(cachePath, previewData, 0o644); err != nil {
		log.Printf("[Preview] Warning: failed to cache preview for file %d: %v", file.ID, err)
	}

	return previewData, nil
}

// optimizeImage scales an image down to the preview bound as JPEG.
func (s *Service) optimizeImage(data []byte) ([]byte, error) {
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	width, height := fitDimensions(size.Width, size.Height, maxImageSize)

	processed, err := image.Process(bimg.Options{
		Width:   width,
		Height:  height,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	return processed, nil
}

func fitDimensions(width, height, maxSize int) (newWidth, newHeight int) {
	if width > height {
		newWidth = maxSize
		newHeight = (height * maxSize) / width
	} else {
		newHeight = maxSize
		newWidth = (width * maxSize) / height
	}
	return
}

// generatePDFPreview converts the first page with pdftoppm, then scales
// the result.
func (s *Service) generatePDFPreview(data []byte) ([]byte, error) {
	tmpPath, err := os.MkdirTemp("", "preview")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	pdfPath := filepath.Join(tmpPath, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write PDF file: %w", err)
	}

	outputPath := filepath.Join(tmpPath, "output")
	cmd := exec.Command("pdftoppm",
		"-jpeg",
		"-f", "1",
		"-l", "1",
		"-scale-to", fmt.Sprintf("%d", maxImageSize),
		"-singlefile",
		pdfPath,
		outputPath,
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to convert PDF: %w", err)
	}

	imgData, err := os.ReadFile(outputPath + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to read converted image: %w", err)
	}

	return s.optimizeImage(imgData)
}

// generateVideoPreview extracts a single frame near the start of the
// video with ffmpeg.
func (s *Service) generateVideoPreview(ctx context.Context, videoPath string) ([]byte, error) {
	tmpPath, err := os.MkdirTemp("", "preview")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	outputPath := filepath.Join(tmpPath, "output.jpg")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", "00:00:01",
		"-i", videoPath,
		"-vf", fmt.Sprintf("scale=%d:-1:force_original_aspect_ratio=decrease", maxImageSize),
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to extract frame: %w (stderr: %s)", err, stderr.String())
	}

	imgData, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame image: %w", err)
	}

	return s.optimizeImage(imgData)
}
