// Package storage хранит файлы доказательств, приложенных к спорам.
package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ErrTooLarge файл превышает допустимый размер.
var ErrTooLarge = errors.New("storage: размер файла превышает лимит")

// Object сохранённый файл.
type Object struct {
	// Key относительный путь в хранилище, его же записываем в Evidence.URL.
	Key         string
	Size        int64
	Checksum    string
	ContentType string
}

// EvidenceStorage бэкенд для файлов доказательств.
type EvidenceStorage interface {
	Save(ctx context.Context, disputeID uuid.UUID, originalName, contentType string, r io.Reader) (Object, error)
	Delete(ctx context.Context, key string) error
}

// objectKey строит ключ вида <dispute_id>/<unixnano>_<имя файла>.
func objectKey(disputeID uuid.UUID, originalName string) string {
	return fmt.Sprintf("%s/%d_%s", disputeID, time.Now().UnixNano(), sanitizeFilename(originalName))
}

// newChecksum возвращает хэш BLAKE2b-256, который считается во время записи.
func newChecksum() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// New256 возвращает ошибку только для слишком длинного ключа.
		panic(err)
	}
	return h
}

func formatChecksum(h hash.Hash) string {
	return "blake2b-256:" + hex.EncodeToString(h.Sum(nil))
}

// Checksum считает контрольную сумму потока в том же формате, что и хранилища.
func Checksum(r io.Reader) (string, error) {
	h := newChecksum()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return formatChecksum(h), nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		name = "evidence"
	}
	return name
}
