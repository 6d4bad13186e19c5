package dto

import (
	"github.com/ignatzorin/freelance-arbitration/internal/models"
)

// Paginated represents a page of records
type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPaginated cuts one page out of an ordered list
func NewPaginated[T any](items []T, limit, offset int) Paginated[T] {
	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)

	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return Paginated[T]{
		Data: page,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
		},
	}
}

// EvidenceUploadResponse represents the result of an evidence file upload
type EvidenceUploadResponse struct {
	Dispute  *models.Dispute `json:"dispute"`
	Evidence models.Evidence `json:"evidence"`
	Size     int64           `json:"size"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
