// Package storage uploads level thumbnails to a GCS bucket.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	gstorage "cloud.google.com/go/storage"
)

// ThumbnailStore uploads a thumbnail payload and returns its public URL.
type ThumbnailStore interface {
	Upload(ctx context.Context, uid string, payload string) (string, error)
}

type gcsThumbnailStore struct {
	client *gstorage.Client
	bucket string
	logger *slog.Logger
}

// NewGCSThumbnailStore creates a store backed by the given bucket.
func NewGCSThumbnailStore(ctx context.Context, bucket string, logger *slog.Logger) (ThumbnailStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("thumbnail bucket not configured")
	}

	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &gcsThumbnailStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload decodes the base64 payload the game client sends and writes it to
// the bucket under a uid-derived key.
func (s *gcsThumbnailStore) Upload(ctx context.Context, uid string, payload string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail payload for %s: %w", uid, err)
	}

	key := "thumbnails/" + uid + ".jpg"
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write thumbnail %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize thumbnail %s: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key), nil
}
