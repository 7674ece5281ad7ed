package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UploadRateLimiter ограничивает частоту загрузок отчетов по IP клиента.
// Загрузка порождает разбор файла и запись в БД, поэтому защищаем
// эндпоинт от случайных повторных отправок из UI.
type UploadRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewUploadRateLimiter создает ограничитель: limit запросов в секунду
// с всплеском до burst
func NewUploadRateLimiter(limit rate.Limit, burst int) *UploadRateLimiter {
	if limit <= 0 {
		limit = rate.Every(1) // 1 запрос в секунду по умолчанию
	}
	if burst <= 0 {
		burst = 3
	}
	return &UploadRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// limiterFor возвращает лимитер клиента, создавая его при первом обращении
func (l *UploadRateLimiter) limiterFor(clientIP string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[clientIP] = limiter
	}
	return limiter
}

// Middleware возвращает Gin middleware ограничения частоты
func (l *UploadRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   true,
				"message": "слишком много загрузок, повторите позже",
			})
			return
		}
		c.Next()
	}
}
