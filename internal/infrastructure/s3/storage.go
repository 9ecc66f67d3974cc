package s3

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
)

const defaultRegion = "us-east-1"

// Storage - хранилище фотографий объявлений в S3/MinIO
type Storage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewS3Storage создаёт клиент и бакет, если его ещё нет
func NewS3Storage(ctx context.Context, cfg *config.S3Config, logger *zap.Logger) (*Storage, error) {
	logger.Info("Initializing S3 storage",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: defaultRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: defaultRegion}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			logger.Error("Failed to make or verify bucket",
				zap.String("bucket", cfg.Bucket),
				zap.Error(err),
				zap.NamedError("exists_error", existsErr))
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Debug("Bucket already exists", zap.String("bucket", cfg.Bucket))
	}

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Upload stores data under photos/<uuid><ext> and returns its URL.
func (s *Storage) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("photos/%s%s", uuid.New().String(), extension(filename, contentType))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(filename)},
	})
	if err != nil {
		s.logger.Error("PutObject failed",
			zap.String("bucket", s.bucket),
			zap.String("key", objectKey),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}

	s.logger.Info("Image uploaded",
		zap.String("key", info.Key),
		zap.Int64("size", info.Size))

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey), nil
}

func extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
