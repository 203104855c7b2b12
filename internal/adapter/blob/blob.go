// Package blob stores raw recording audio. Recordings reference their audio
// by key only; the bytes never enter the database.
package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/config"
)

// Store is implemented by S3Store and LocalStore. Open returns an error
// wrapping domain.ErrNotFound for a missing key. Deleting a missing key is
// not an error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a date-partitioned key for a new recording's audio, keeping
// the uploaded file's extension.
func NewKey(recordingID uuid.UUID, capturedAt time.Time, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".wav"
	}
	return path.Join(capturedAt.UTC().Format("2006/01/02"), recordingID.String()+ext)
}

// New selects the backend named in cfg.
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3(NewS3Client(cfg), cfg.Bucket, cfg.Prefix, logger), nil
	case "local":
		return NewLocal(cfg.LocalDir, logger)
	}
	return nil, fmt.Errorf("blob: unknown backend %q", cfg.Backend)
}
