package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, New(ErrCodeNotFound, "x").HTTPStatus)
	assert.Equal(t, http.StatusConflict, New(ErrCodeInvalidState, "x").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, New(ErrCodeValidation, "x").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, New(ErrCodeInternal, "x").HTTPStatus)
}

func TestAppError_WrappedDetection(t *testing.T) {
	cause := errors.New("no rows")
	err := fmt.Errorf("service: %w", Wrap(cause, ErrCodeNotFound, "спор не найден"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsInvalidState(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "спор не найден", MessageOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatusOf(err))
}

func TestAppError_UnknownErrorIsInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, ErrCodeInternal, CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(err))
	assert.Equal(t, "внутренняя ошибка сервера", MessageOf(err))
}
