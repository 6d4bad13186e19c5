package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "arbitration:ratelimit"

// NewRateLimitStore возвращает хранилище счётчиков: общее в Redis, если
// клиент передан, иначе в памяти процесса.
func NewRateLimitStore(rdb *redis.Client) (limiter.Store, error) {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, fmt.Errorf("rate limit: не удалось создать хранилище в redis: %w", err)
	}
	return store, nil
}

// RateLimitMiddleware создаёт middleware для ограничения количества запросов.
// Ключ: пользователь, если он уже известен, иначе IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(ContextUserIDKey); userID != "" {
			key = "user:" + userID
		}

		context, err := instance.Get(c, key)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

		if context.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}
