package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, 1)
	require.NoError(t, err)

	disputeID := uuid.New()
	content := []byte("%PDF-1.4 договор")
	obj, err := s.Save(context.Background(), disputeID, "../../договор 1.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, disputeID.String()+"/"))
	assert.NotContains(t, obj.Key, "..")
	assert.Equal(t, int64(len(content)), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	want, err := Checksum(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, want, obj.Checksum)
	assert.True(t, strings.HasPrefix(obj.Checksum, "blake2b-256:"))

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	require.NoError(t, s.Delete(context.Background(), obj.Key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.Key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(context.Background(), obj.Key), "повторное удаление не ошибка")
	assert.Error(t, s.Delete(context.Background(), "../etc/passwd"))
}

func TestLocalStorage_TooLarge(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, 1)
	require.NoError(t, err)

	big := bytes.Repeat([]byte("a"), 1024*1024+1)
	_, err = s.Save(context.Background(), uuid.New(), "big.bin", "application/zip", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	var leftovers []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	assert.Empty(t, leftovers)
}

func TestDetectEvidenceType(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		wantType models.EvidenceType
		wantMIME string
	}{
		{"png", pngHeader, models.EvidenceImage, "image/png"},
		{"pdf", []byte("%PDF-1.7\n"), models.EvidenceDocument, "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, mime, err := DetectEvidenceType(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, kind)
			assert.Equal(t, tt.wantMIME, mime)
		})
	}

	_, _, err := DetectEvidenceType([]byte("просто текст"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "a_b.png", sanitizeFilename(`C:\tmp\a b.png`))
	assert.Equal(t, "evidence", sanitizeFilename(""))
}
