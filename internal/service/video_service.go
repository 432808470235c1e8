package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xfrr/goffmpeg/transcoder"

	"wellatlas/internal/domain"
	"wellatlas/internal/storage"
)

// VideoService converts video attachments into HLS playlists so the
// browser can stream them instead of downloading the whole file.
type VideoService struct {
	files     *storage.FileStore
	outputDir string
}

func NewVideoService(files *storage.FileStore, outputDir string) (*VideoService, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &VideoService{
		files:     files,
		outputDir: outputDir,
	}, nil
}

// PrepareStream transcodes the attachment into HLS segments, reusing
// the result of a previous run when the playlist already exists.
func (s *VideoService) PrepareStream(ctx context.Context, file *domain.EntryFile) (string, error) {
	if !strings.HasPrefix(file.MIME, "video/") {
		return "", fmt.Errorf("%w: file %d is not a video", domain.ErrInvalidInput, file.ID)
	}

	outputPath := filepath.Join(s.outputDir, fmt.Sprintf("%d", file.ID))
	playlistPath := filepath.Join(outputPath, "playlist.m3u8")

	if _, err := os.Stat(playlistPath); err == nil {
		return playlistPath, nil
	}

	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	inputPath := s.files.Path(file.Filename)
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrNotFound
		}
		return "", err
	}

	log.Printf("[Video] Transcoding file %d for streaming", file.ID)

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(inputPath, playlistPath); err != nil {
		return "", fmt.Errorf("failed to initialize transcoder: %w", err)
	}

	trans.MediaFile().SetVideoCodec("libx264")
	trans.MediaFile().SetAudioCodec("aac")
	trans.MediaFile().SetHlsSegmentDuration(4)
	trans.MediaFile().SetHlsPlaylistType("vod")
	trans.MediaFile().SetHlsSegmentFilename(filepath.Join(outputPath, "segment_%d.ts"))

	done := trans.Run(true)
	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("transcoding failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("[Video] Context canceled while transcoding file %d", file.ID)
		return "", ctx.Err()
	}

	return playlistPath, nil
}

// SegmentPath resolves a segment name inside the output directory for a
// prepared stream. The name is reduced to its base to keep requests
// from escaping the directory.
func (s *VideoService) SegmentPath(fileID int64, segment string) (string, error) {
	segment = filepath.Base(segment)
	if !strings.HasSuffix(segment, ".ts") && segment != "playlist.m3u8" {
		return "", fmt.Errorf("%w: invalid segment name", domain.ErrInvalidInput)
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("%d", fileID), segment)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return path, nil
}
