package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig параметры подключения к S3-совместимому хранилищу.
type MinioConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxUploadMB int64
}

// MinioStorage хранит файлы доказательств в бакете MinIO. Бакет приватный:
// доказательства видят только участники спора через API.
type MinioStorage struct {
	client         *minio.Client
	bucket         string
	maxUploadBytes int64
}

// NewMinioStorage подключается к MinIO и создаёт бакет, если его нет.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать клиент minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось проверить бакет %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: не удалось создать бакет %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStorage{
		client:         client,
		bucket:         cfg.Bucket,
		maxUploadBytes: cfg.MaxUploadMB * 1024 * 1024,
	}, nil
}

// Save загружает файл в бакет. Файл сверх лимита удаляется после загрузки.
func (s *MinioStorage) Save(ctx context.Context, disputeID uuid.UUID, originalName, contentType string, r io.Reader) (Object, error) {
	key := objectKey(disputeID, originalName)
	sum := newChecksum()
	body := io.TeeReader(&io.LimitedReader{R: r, N: s.maxUploadBytes + 1}, sum)

	info, err := s.client.PutObject(ctx, s.bucket, key, body, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("storage: ошибка загрузки в minio: %w", err)
	}

	if info.Size > s.maxUploadBytes {
		_ = s.Delete(ctx, key)
		return Object{}, ErrTooLarge
	}

	return Object{Key: key, Size: info.Size, Checksum: formatChecksum(sum), ContentType: contentType}, nil
}

// Delete удаляет объект из бакета.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: не удалось удалить объект %s: %w", key, err)
	}
	return nil
}
