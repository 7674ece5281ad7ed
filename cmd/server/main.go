// @title Health Check Tracker API
// @version 1.0
// @description API трекера запусков Health Check: заказчики, загрузка отчетов, сессии обработки, дашборд и экспорт истории запусков.

// @contact.name API Support
// @contact.email support@example.com

// @license.name Internal Use Only

// @host localhost:9090
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hctracker/database"
	"hctracker/internal/config"
	"hctracker/server"
	"hctracker/server/middleware"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 Запуск Health Check Tracker...")

	// Загружаем конфигурацию из env
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	setupLogger(cfg.LogLevel)
	middleware.InitErrorMetrics()

	// Создаем папку для загружаемых отчетов
	uploadsDir, err := server.EnsureUploadsDirectory(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Ошибка создания папки загрузок: %v", err)
	}
	cfg.UploadsDir = uploadsDir

	// Создаем базу данных
	dbConfig := database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
	db, err := database.NewDBWithConfig(cfg.DatabasePath, dbConfig)
	if err != nil {
		log.Fatalf("Ошибка создания базы данных: %v", err)
	}
	defer db.Close()

	srv := server.NewServer(db, cfg, slog.Default())

	// Сверяем счетчики запусков при старте: расхождения исправляются
	// до первого запроса к дашборду
	if cfg.AuditOnStartup {
		if _, err := srv.AuditService().AuditAll(); err != nil {
			log.Printf("⚠ Ошибка сверки счетчиков при старте: %v", err)
		}
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("✗ КРИТИЧЕСКАЯ ОШИБКА: Ошибка запуска сервера: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════")
	log.Printf("✓ Сервер успешно запущен на порту %s", cfg.Port)
	log.Printf("✓ API доступно: http://localhost:%s", cfg.Port)
	log.Printf("✓ База данных: %s", cfg.DatabasePath)
	log.Printf("✓ Папка загрузок: %s", cfg.UploadsDir)
	log.Println("  Для остановки нажмите Ctrl+C")
	log.Println("═══════════════════════════════════════════════════════")

	// Ждем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("═══════════════════════════════════════════════════════")
	log.Println("⏹  Получен сигнал завершения, останавливаю сервер...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("✗ Ошибка при остановке сервера: %v", err)
	} else {
		log.Println("✓ Сервер успешно остановлен")
	}
}

// setupLogger настраивает slog по уровню из конфигурации
func setupLogger(level string) {
	var slogLevel slog.Level
	switch level {
	case "DEBUG":
		slogLevel = slog.LevelDebug
	case "WARN":
		slogLevel = slog.LevelWarn
	case "ERROR":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
