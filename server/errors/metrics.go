package errors

import (
	"sync"
	"time"
)

// ErrorMetricsCollector собирает метрики ошибок для страницы диагностики
type ErrorMetricsCollector struct {
	mu sync.RWMutex

	totalErrors      int64
	errorsByCode     map[int]int64    // По HTTP статус коду
	errorsByEndpoint map[string]int64 // По эндпоинту

	// Последние N ошибок для быстрой диагностики без поиска по логам
	lastErrors    []ErrorRecord
	maxLastErrors int

	startTime time.Time
}

// ErrorRecord запись об ошибке
type ErrorRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Code        int       `json:"code"`
	Message     string    `json:"message"`
	Endpoint    string    `json:"endpoint"`
	RequestID   string    `json:"request_id"`
	UserMessage string    `json:"user_message"`
}

// NewErrorMetricsCollector создает новый сборщик метрик ошибок
func NewErrorMetricsCollector() *ErrorMetricsCollector {
	return &ErrorMetricsCollector{
		errorsByCode:     make(map[int]int64),
		errorsByEndpoint: make(map[string]int64),
		lastErrors:       make([]ErrorRecord, 0),
		maxLastErrors:    100,
		startTime:        time.Now(),
	}
}

// RecordError записывает ошибку в метрики
func (emc *ErrorMetricsCollector) RecordError(err *AppError, endpoint, requestID string) {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors++
	emc.errorsByCode[err.Code]++
	if endpoint != "" {
		emc.errorsByEndpoint[endpoint]++
	}

	record := ErrorRecord{
		Timestamp:   time.Now(),
		Code:        err.Code,
		Message:     err.Error(),
		Endpoint:    endpoint,
		RequestID:   requestID,
		UserMessage: err.UserMessage(),
	}
	emc.lastErrors = append(emc.lastErrors, record)
	if len(emc.lastErrors) > emc.maxLastErrors {
		emc.lastErrors = emc.lastErrors[len(emc.lastErrors)-emc.maxLastErrors:]
	}
}

// GetMetrics возвращает сводку метрик ошибок
func (emc *ErrorMetricsCollector) GetMetrics() map[string]interface{} {
	emc.mu.RLock()
	defer emc.mu.RUnlock()

	byCode := make(map[int]int64, len(emc.errorsByCode))
	for code, count := range emc.errorsByCode {
		byCode[code] = count
	}
	byEndpoint := make(map[string]int64, len(emc.errorsByEndpoint))
	for endpoint, count := range emc.errorsByEndpoint {
		byEndpoint[endpoint] = count
	}

	return map[string]interface{}{
		"total_errors":       emc.totalErrors,
		"errors_by_code":     byCode,
		"errors_by_endpoint": byEndpoint,
		"uptime_seconds":     int64(time.Since(emc.startTime).Seconds()),
	}
}

// GetLastErrors возвращает последние ошибки, новые первыми
func (emc *ErrorMetricsCollector) GetLastErrors(limit int) []ErrorRecord {
	emc.mu.RLock()
	defer emc.mu.RUnlock()

	if limit <= 0 || limit > len(emc.lastErrors) {
		limit = len(emc.lastErrors)
	}

	result := make([]ErrorRecord, 0, limit)
	for i := len(emc.lastErrors) - 1; i >= len(emc.lastErrors)-limit; i-- {
		result = append(result, emc.lastErrors[i])
	}
	return result
}

// Reset сбрасывает накопленные метрики
func (emc *ErrorMetricsCollector) Reset() {
	emc.mu.Lock()
	defer emc.mu.Unlock()

	emc.totalErrors = 0
	emc.errorsByCode = make(map[int]int64)
	emc.errorsByEndpoint = make(map[string]int64)
	emc.lastErrors = emc.lastErrors[:0]
	emc.startTime = time.Now()
}
