package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage хранит файлы доказательств на локальном диске.
type LocalStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewLocalStorage создаёт файловое хранилище.
func NewLocalStorage(rootPath string, maxUploadMB int64) (*LocalStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &LocalStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save сохраняет файл через временный файл и считает контрольную сумму.
func (s *LocalStorage) Save(ctx context.Context, disputeID uuid.UUID, originalName, contentType string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	key := objectKey(disputeID, originalName)
	targetPath := filepath.Join(s.rootPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return Object{}, fmt.Errorf("storage: не удалось создать каталог спора: %w", err)
	}
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return Object{}, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	sum := newChecksum()
	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(io.MultiWriter(f, sum), &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return Object{}, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return Object{}, ErrTooLarge
	}

	if err := f.Close(); err != nil {
		return Object{}, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return Object{}, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return Object{Key: key, Size: written, Checksum: formatChecksum(sum), ContentType: contentType}, nil
}

// Delete удаляет файл из хранилища.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("storage: некорректный ключ %q", key)
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}
