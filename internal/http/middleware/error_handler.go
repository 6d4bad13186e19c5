package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Хэндлеры кладут ошибку в c.Error, здесь она превращается в ответ:
// код берётся из apperror, внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code := apperror.CodeOf(err)
		statusCode := apperror.HTTPStatusOf(err)
		message := apperror.MessageOf(err)

		entry := logger.With(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"code":   code,
		}).WithError(err)

		if statusCode >= http.StatusInternalServerError {
			entry.Error("Request error")
			message = "внутренняя ошибка сервера"
		} else {
			entry.Debug("Request rejected")
		}

		c.JSON(statusCode, gin.H{"error": message, "code": code})
	}
}
