package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/logging"
)

const outputPrefix = "outputs"

// OutputStore keeps dithered bitmaps keyed by job ID
type OutputStore struct {
	backend Backend
}

// NewOutputStore creates an output store on top of backend
func NewOutputStore(backend Backend) *OutputStore {
	return &OutputStore{backend: backend}
}

// Key returns the storage key for a job's output
func Key(id uuid.UUID) string {
	return path.Join(outputPrefix, id.String()+".bmp")
}

// Store writes a job's output and returns its key
func (s *OutputStore) Store(ctx context.Context, id uuid.UUID, r io.Reader) (string, error) {
	key := Key(id)
	if err := s.backend.Put(ctx, key, r); err != nil {
		return "", fmt.Errorf("failed to store output for job %s: %w", id, err)
	}
	logging.DebugWithComponent(logging.ComponentStorage, "stored output", "job_id", id, "key", key)
	return key, nil
}

// Open returns a reader for a job's output. A missing output wraps
// ErrNotFound.
func (s *OutputStore) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	return s.backend.Get(ctx, Key(id))
}

// Delete removes a job's output if present
func (s *OutputStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.backend.Delete(ctx, Key(id))
}

// CleanupOldImages removes outputs older than maxAge and reports how many
// were deleted
func (s *OutputStore) CleanupOldImages(ctx context.Context, maxAge time.Duration) (int, error) {
	files, err := s.backend.ListWithInfo(ctx, outputPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list outputs: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, file := range files {
		if !file.ModTime.Before(cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, file.Key); err != nil {
			logging.WarnWithComponent(logging.ComponentStorage, "failed to remove old output", "key", file.Key, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logging.InfoWithComponent(logging.ComponentStorage, "removed old outputs", "count", removed, "max_age", maxAge)
	}
	return removed, nil
}
