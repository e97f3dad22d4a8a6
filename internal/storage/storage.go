package storage

import (
	"context"
	"io"
)

// Service stores uploaded images and returns their public URL.
type Service interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
