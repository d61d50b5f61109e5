package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage persists uploaded files on disk under a base directory and
// resolves stored relative paths to public URLs.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicBaseURL == "" {
		publicBaseURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// SaveStream copies from reader into the target file path and returns the
// stored relative path.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (string, error) {
	target := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return normalize(filename), nil
}

// Delete removes a stored file if present. Missing files are not an error.
func (s *LocalStorage) Delete(filename string) error {
	target := s.resolve(filename)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// PublicURL resolves a stored relative path to its public URL.
func (s *LocalStorage) PublicURL(filename string) string {
	if filename == "" {
		return ""
	}
	rel := normalize(filename)
	if strings.HasPrefix(rel, s.publicBaseURL+"/") {
		return rel
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(rel, "/")
}

// Path exposes the underlying absolute path for a stored file.
func (s *LocalStorage) Path(filename string) string {
	return s.resolve(filename)
}

func (s *LocalStorage) resolve(filename string) string {
	rel := normalize(filename)
	rel = strings.TrimPrefix(rel, s.publicBaseURL+"/")
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(rel))
}

// normalize flattens platform path separators so stored paths are stable
// regardless of where the upload was originally written.
func normalize(filename string) string {
	return path.Clean(strings.ReplaceAll(filename, "\\", "/"))
}
