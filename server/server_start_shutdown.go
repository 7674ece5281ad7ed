package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"hctracker/server/handlers"
	"hctracker/server/middleware"
)

// Start запускает HTTP сервер
func (s *Server) Start() error {
	handler, err := s.ensureHTTPHandler()
	if err != nil {
		return err
	}

	// WriteTimeout с запасом под выгрузку больших xlsx отчетов
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Сервер запускается на порту %s", s.config.Port)
	log.Printf("API доступно по адресу: http://localhost%s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("не удалось запустить HTTP сервер на %s: %w", addr, err)
	}

	return nil
}

func (s *Server) ensureHTTPHandler() (http.Handler, error) {
	s.handlerOnce.Do(func() {
		handler, err := s.buildHTTPHandler()
		if err != nil {
			s.handlerInitErr = err
			return
		}
		s.httpHandler = handler
	})

	if s.handlerInitErr != nil {
		return nil, s.handlerInitErr
	}
	if s.httpHandler == nil {
		return nil, fmt.Errorf("httpHandler is nil")
	}

	return s.httpHandler, nil
}

func (s *Server) buildHTTPHandler() (http.Handler, error) {
	// Режим Gin: release для продакшена, переопределяется через GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(gin.Recovery())

	handlers.RegisterSwaggerRoutes(router, fmt.Sprintf("localhost:%s", s.config.Port))

	s.registerGinHandlers(router)

	return router, nil
}

// registerGinHandlers регистрирует маршруты API
func (s *Server) registerGinHandlers(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/health", s.systemHandler.HandleHealth)

	// Customers API
	customersAPI := api.Group("/customers")
	{
		customersAPI.GET("", s.customerHandler.HandleListCustomers)
		customersAPI.POST("", s.customerHandler.HandleCreateCustomer)
		customersAPI.GET("/:id", s.customerHandler.HandleGetCustomer)
		customersAPI.PUT("/:id", s.customerHandler.HandleUpdateCustomer)
		customersAPI.DELETE("/:id", s.customerHandler.HandleDeleteCustomer)
	}

	// Uploads API: лимит на частоту загрузок по IP
	api.POST("/uploads", s.uploadLimiter.Middleware(), s.uploadHandler.HandleUploadReport)

	// Sessions API
	sessionsAPI := api.Group("/sessions")
	{
		sessionsAPI.GET("", s.sessionHandler.HandleListSessions)
		sessionsAPI.POST("", s.sessionHandler.HandleCreateSession)
		sessionsAPI.GET("/:id", s.sessionHandler.HandleGetSession)
		sessionsAPI.POST("/:id/complete", s.sessionHandler.HandleCompleteSession)
		sessionsAPI.POST("/:id/fail", s.sessionHandler.HandleFailSession)
	}

	// Dashboard API
	dashboardAPI := api.Group("/dashboard")
	{
		dashboardAPI.GET("", s.dashboardHandler.HandleGetDashboard)
		dashboardAPI.GET("/:name", s.dashboardHandler.HandleGetCustomerDashboard)
	}

	// Export API
	exportAPI := api.Group("/export")
	{
		exportAPI.GET("/tracker.xlsx", s.reportHandler.HandleExportExcel)
		exportAPI.GET("/tracker.csv", s.reportHandler.HandleExportCSV)
	}

	// System API
	api.POST("/history/audit", s.systemHandler.HandleHistoryAudit)
	api.GET("/system/errors", s.systemHandler.HandleErrorMetrics)
}

// ServeHTTP реализует http.Handler для тестов и вспомогательных утилит
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, err := s.ensureHTTPHandler()
	if err != nil {
		http.Error(w, "server is not initialized", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}

// Shutdown останавливает HTTP сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Initiating graceful shutdown...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}

	log.Println("Graceful shutdown completed")
	return nil
}
