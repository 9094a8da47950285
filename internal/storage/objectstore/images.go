// Package objectstore resolves voting option image references against MinIO.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// ImageStore hands out presigned GET URLs for option images
type ImageStore struct {
	client   *minio.Client
	bucket   string
	lifetime time.Duration
	log      *log.Logger
}

// New connects to the MinIO endpoint configured in cfg
func New(cfg *config.Config) (*ImageStore, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ImageStore{
		client:   client,
		bucket:   cfg.MinIO.Bucket,
		lifetime: cfg.MinIO.URLLifetime,
		log:      logger.Repository("minio_images"),
	}, nil
}

// EnsureBucket creates the image bucket when missing
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("image bucket created", "bucket", s.bucket)
	return nil
}

// URL returns a browser-usable address for ref. Absolute http(s) references
// pass through; anything else is an object key in the bucket.
func (s *ImageStore) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" || IsAbsolute(ref) {
		return ref, nil
	}

	key := strings.TrimPrefix(ref, "/")
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.lifetime, url.Values{})
	if err != nil {
		s.log.Error("failed to presign image", "key", key, "error", err)
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

// IsAbsolute reports whether ref already is a full http(s) URL
func IsAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
