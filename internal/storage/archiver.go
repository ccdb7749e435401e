// Package storage archives quote artifacts in MinIO.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/logger"
)

// Archiver stores a copy of each committed quote PDF in object storage.
// Archival is best-effort; the local output directory remains the source of
// truth for downloads.
type Archiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewArchiver creates an archiver. Returns an error when MinIO is not
// configured; callers should then run without archival.
func NewArchiver(cfg config.StorageConfig, log *logger.Logger) (*Archiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	return &Archiver{
		client: client,
		bucket: cfg.GetMinioBucketQuoteArtifacts(),
		log:    log,
	}, nil
}

// EnsureBucket creates the artifact bucket if it doesn't exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// ArchivePDF stores the PDF under <quoteID>/<filename>.
func (a *Archiver) ArchivePDF(ctx context.Context, quoteID, filename string, content []byte) error {
	key := quoteID + "/" + filename
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		a.log.ExternalCallFailed("minio", err)
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}
