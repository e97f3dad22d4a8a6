package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService writes uploads to a directory served as static files.
type LocalService struct {
	dir           string
	publicBaseURL string
}

func NewLocalService(dir, publicBaseURL string) *LocalService {
	return &LocalService{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *LocalService) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// names are generated by the caller but never trust them as paths
	name = filepath.Base(name)
	target := filepath.Join(s.dir, name)

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return s.publicBaseURL + "/" + name, nil
}
