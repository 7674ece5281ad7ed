// Package server собирает HTTP сервер трекера Health Check:
// сервисы, обработчики, middleware и жизненный цикл.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"hctracker/database"
	"hctracker/internal/config"
	"hctracker/server/handlers"
	"hctracker/server/middleware"
	"hctracker/server/services"
)

// Server HTTP сервер трекера запусков Health Check
type Server struct {
	config *config.Config
	db     *database.DB
	logger *slog.Logger

	// Сервисы
	customerService  *services.CustomerService
	historyService   *services.HistoryService
	sessionService   *services.SessionService
	uploadService    *services.UploadService
	dashboardService *services.DashboardService
	reportService    *services.ReportService
	auditService     *services.AuditService

	// Обработчики
	customerHandler  *handlers.CustomerHandler
	sessionHandler   *handlers.SessionHandler
	uploadHandler    *handlers.UploadHandler
	dashboardHandler *handlers.DashboardHandler
	reportHandler    *handlers.ReportHandler
	systemHandler    *handlers.SystemHandler

	uploadLimiter *middleware.UploadRateLimiter

	httpServer     *http.Server
	httpHandler    http.Handler
	handlerOnce    sync.Once
	handlerInitErr error
}

// NewServer создает новый сервер с сервисами и обработчиками
func NewServer(db *database.DB, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		db:     db,
		logger: logger,
	}

	s.initServices()
	s.initHandlers()
	return s
}

// initServices создает сервисы в порядке зависимостей
func (s *Server) initServices() {
	s.customerService = services.NewCustomerService(s.db, s.logger)
	s.historyService = services.NewHistoryService(s.db, s.logger)
	s.sessionService = services.NewSessionService(s.db, s.historyService, s.logger)
	s.uploadService = services.NewUploadService(
		s.db, s.sessionService, s.config.UploadsDir, s.config.MaxUploadSizeBytes, s.logger)
	s.dashboardService = services.NewDashboardService(s.db, s.logger)
	s.reportService = services.NewReportService(s.dashboardService, s.logger)
	s.auditService = services.NewAuditService(s.db, s.logger)
}

// initHandlers создает HTTP обработчики поверх сервисов
func (s *Server) initHandlers() {
	s.customerHandler = handlers.NewCustomerHandler(s.customerService)
	s.sessionHandler = handlers.NewSessionHandler(s.sessionService)
	s.uploadHandler = handlers.NewUploadHandler(s.uploadService)
	s.dashboardHandler = handlers.NewDashboardHandler(s.dashboardService)
	s.reportHandler = handlers.NewReportHandler(s.reportService)
	s.systemHandler = handlers.NewSystemHandler(s.auditService)

	s.uploadLimiter = middleware.NewUploadRateLimiter(
		rate.Limit(s.config.UploadRatePerSecond), s.config.UploadBurst)
}

// AuditService возвращает сервис сверки счетчиков для запуска при старте
func (s *Server) AuditService() *services.AuditService {
	return s.auditService
}

// EnsureUploadsDirectory создает папку для загружаемых отчетов
func EnsureUploadsDirectory(uploadsDir string) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return filepath.Clean(uploadsDir), nil
}
