package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/civiport/report-management/internal"
)

// PhotoStore holds report photo uploads in object storage.
type PhotoStore interface {
	UploadPhoto(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error)
	DeletePhotos(ctx context.Context, objectKeys []string) error
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

const presignedURLExpiry = 15 * time.Minute

type MinioPhotoStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func NewMinioPhotoStore(cfg internal.StorageConfig, logger *slog.Logger) (*MinioPhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &MinioPhotoStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the photo bucket if it does not exist yet. Called
// once at startup.
func (s *MinioPhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}
	s.logger.Info("photo bucket created", "bucket", s.bucket)
	return nil
}

func (s *MinioPhotoStore) UploadPhoto(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("reports/%s", uuid.NewString())
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("photo upload failed", "error", err, "object_key", objectKey)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.logger.Debug("photo uploaded", "object_key", objectKey, "size", size)
	return objectKey, nil
}

func (s *MinioPhotoStore) DeletePhotos(ctx context.Context, objectKeys []string) error {
	for _, key := range objectKeys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete photo %q: %w", key, err)
		}
	}
	return nil
}

func (s *MinioPhotoStore) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignedURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign photo URL: %w", err)
	}
	return u.String(), nil
}
