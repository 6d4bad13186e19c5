package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator проверяет, что все перечисленные параметры пути являются валидными UUID.
// Использование: router.GET("/disputes/:id/evidence/:evidenceId", UUIDValidator("id", "evidenceId"), handler)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			idStr := c.Param(name)
			if idStr == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " обязателен",
				})
				return
			}

			if _, err := uuid.Parse(idStr); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " должен быть валидным UUID",
				})
				return
			}
		}

		c.Next()
	}
}
