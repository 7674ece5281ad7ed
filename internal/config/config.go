// Package config загружает конфигурацию трекера Health Check
// из переменных окружения со значениями по умолчанию.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База данных
	DatabasePath string `json:"database_path"`

	// Хранилище загруженных отчетов
	UploadsDir string `json:"uploads_dir"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Ограничение частоты загрузок
	UploadRatePerSecond float64 `json:"upload_rate_per_second"`
	UploadBurst         int     `json:"upload_burst"`

	// Максимальный размер загружаемого отчета в байтах
	MaxUploadSizeBytes int64 `json:"max_upload_size_bytes"`

	// Сверка счетчиков при старте сервера
	AuditOnStartup bool `json:"audit_on_startup"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("SERVER_PORT", "9090"),

		DatabasePath: getEnv("DATABASE_PATH", "tracker.db"),
		UploadsDir:   getEnv("UPLOADS_DIR", "data/uploads"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 3),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		UploadRatePerSecond: getEnvFloat("UPLOAD_RATE_PER_SECOND", 1),
		UploadBurst:         getEnvInt("UPLOAD_BURST", 3),

		MaxUploadSizeBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 20)) * 1024 * 1024,

		AuditOnStartup: getEnv("AUDIT_ON_STARTUP", "true") == "true",
	}

	// Валидация
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt возвращает целочисленное значение переменной окружения
func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvFloat возвращает вещественное значение переменной окружения
func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration возвращает длительность из переменной окружения
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
