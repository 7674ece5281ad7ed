package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "hctracker/server/errors"
)

// Глобальный сборщик метрик ошибок
var globalErrorMetrics *apperrors.ErrorMetricsCollector

// InitErrorMetrics инициализирует глобальный сборщик метрик ошибок
func InitErrorMetrics() {
	globalErrorMetrics = apperrors.NewErrorMetricsCollector()
}

// GetErrorMetrics возвращает глобальный сборщик метрик ошибок
func GetErrorMetrics() *apperrors.ErrorMetricsCollector {
	if globalErrorMetrics == nil {
		globalErrorMetrics = apperrors.NewErrorMetricsCollector()
	}
	return globalErrorMetrics
}

// HTTPError интерфейс для ошибок с HTTP статусом и сообщением
// Используется для избежания циклических зависимостей
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	GetContext() string
	Unwrap() error
}

// AbortWithError обрабатывает ошибку и завершает запрос JSON ответом.
// Поддерживает HTTPError интерфейс для правильной обработки статус кодов
// и сообщений; прочие ошибки становятся 500 с общим сообщением.
func AbortWithError(c *gin.Context, err error) {
	reqID := GetRequestIDFromGin(c)
	endpoint := c.Request.URL.Path

	var statusCode int
	var message string

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		statusCode = httpErr.StatusCode()
		message = httpErr.UserMessage()

		// Записываем в метрики
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			GetErrorMetrics().RecordError(appErr, endpoint, reqID)
		}

		slog.Error("HTTP error",
			"error", httpErr.Unwrap(),
			"user_message", httpErr.UserMessage(),
			"context", httpErr.GetContext(),
			"status_code", statusCode,
			"request_id", reqID,
			"method", c.Request.Method,
			"path", endpoint,
		)
	} else {
		statusCode = 500
		message = "Внутренняя ошибка сервера"

		slog.Error("unhandled error",
			"error", err,
			"request_id", reqID,
			"method", c.Request.Method,
			"path", endpoint,
		)
	}

	c.AbortWithStatusJSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}
