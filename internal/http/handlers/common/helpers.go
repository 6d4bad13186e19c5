package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/dto"
	"github.com/ignatzorin/freelance-arbitration/internal/http/middleware"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

var (
	// ErrUserNotFound is returned when user is not found in context
	ErrUserNotFound = errors.New("пользователь не найден в контексте")

	// ErrInvalidUUID is returned when UUID parsing fails
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentActor extracts the authenticated user and role from Gin context
func CurrentActor(c *gin.Context) (service.Actor, error) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		return service.Actor{}, ErrUserNotFound
	}
	return service.Actor{ID: userID, Role: c.GetString(middleware.ContextRoleKey)}, nil
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// ParseUUIDQuery parses an optional UUID query parameter, uuid.Nil when absent
func ParseUUIDQuery(c *gin.Context, key string) (uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return uuid.Nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return parsed, nil
}

// BindAndValidate binds JSON request and returns properly formatted error
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "ошибка валидации запроса: "+err.Error())
	}
	return nil
}

// Fail hands the error over to middleware.ErrorHandler
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondJSON sends a JSON response with the given status code and data
func RespondJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// ParseIntQuery safely reads an integer query parameter with a fallback value
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination extracts limit and offset from query parameters with defaults
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}

// RespondPage sends one page of an ordered list
func RespondPage[T any](c *gin.Context, items []T) {
	limit, offset := GetPagination(c)
	c.JSON(http.StatusOK, dto.NewPaginated(items, limit, offset))
}
