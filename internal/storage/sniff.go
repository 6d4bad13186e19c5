package storage

import (
	"errors"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
)

// SniffLen сколько первых байт файла нужно для определения типа.
const SniffLen = 512

// ErrUnsupportedType тип файла не подходит для доказательства.
var ErrUnsupportedType = errors.New("storage: неподдерживаемый тип файла")

// DetectEvidenceType определяет тип доказательства по магическим байтам.
// Возвращает тип доказательства и MIME.
func DetectEvidenceType(head []byte) (models.EvidenceType, string, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", "", ErrUnsupportedType
	}

	mime := kind.MIME.Value
	switch {
	case filetype.IsImage(head):
		return models.EvidenceImage, mime, nil
	case filetype.IsVideo(head):
		return models.EvidenceVideo, mime, nil
	case filetype.IsDocument(head), mime == "application/pdf":
		return models.EvidenceDocument, mime, nil
	case mime == "application/zip":
		return models.EvidenceOther, mime, nil
	}
	return "", "", ErrUnsupportedType
}
