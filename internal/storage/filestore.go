// Package storage persists media bytes on the local filesystem and
// materializes completed results from the remote object store.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"server/internal/domain"
)

// Per-media-kind subdirectories under the media root.
const (
	SubdirVideos  = "videos"
	SubdirImages  = "images"
	SubdirUploads = "uploads"
)

var supportedUploadFormats = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"image/gif",
}

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// FileStore manages the media directory tree.
type FileStore struct {
	basePath       string
	maxUploadBytes int64
}

// NewFileStore initializes a FileStore rooted at basePath, creating the
// directory if needed.
func NewFileStore(basePath string, maxUploadBytes int64) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, maxUploadBytes: maxUploadBytes}, nil
}

// BasePath returns the configured media root.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// ValidateUpload screens an incoming file's declared type and size.
func (s *FileStore) ValidateUpload(mimeType string, size int64) error {
	supported := false
	for _, f := range supportedUploadFormats {
		if f == mimeType {
			supported = true
			break
		}
	}
	if !supported {
		return domain.NewInvalidFile(fmt.Sprintf(
			"Unsupported file format: %s. Supported formats: %s",
			mimeType, strings.Join(supportedUploadFormats, ", ")))
	}
	if s.maxUploadBytes > 0 && size > s.maxUploadBytes {
		return domain.NewInvalidFile(fmt.Sprintf(
			"File size exceeds maximum allowed size of %dMB. File size: %.2fMB",
			s.maxUploadBytes/(1024*1024), float64(size)/1024/1024))
	}
	return nil
}

// Save writes data under subdir/filename and returns the absolute path.
func (s *FileStore) Save(subdir, filename string, data []byte) (string, error) {
	path, err := s.target(subdir, filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return path, nil
}

// Resolve locates filename in any of the media subdirectories or the root,
// returning its absolute path.
func (s *FileStore) Resolve(filename string) (string, bool) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", false
	}
	for _, subdir := range []string{SubdirVideos, SubdirImages, SubdirUploads, ""} {
		path := filepath.Join(s.basePath, subdir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Remove deletes filename from whichever subdirectory holds it. It reports
// whether a file was actually removed.
func (s *FileStore) Remove(filename string) bool {
	path, ok := s.Resolve(filename)
	if !ok {
		return false
	}
	return os.Remove(path) == nil
}

// CleanupOlderThan deletes media files whose mtime is older than maxAge,
// returning how many were removed.
func (s *FileStore) CleanupOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// MIMETypeFor infers the content type served for a stored file.
func MIMETypeFor(filename string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// target validates the destination and ensures its directory exists.
func (s *FileStore) target(subdir, filename string) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// sanitizeFilename rejects names that could escape the media root.
func sanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("storage: filename is required")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.New("storage: invalid filename")
	}
	return name, nil
}
