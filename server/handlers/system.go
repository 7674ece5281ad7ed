package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hctracker/server/middleware"
	"hctracker/server/services"
)

// SystemHandler обработчик служебных эндпоинтов
type SystemHandler struct {
	auditService *services.AuditService
	startedAt    time.Time
}

// NewSystemHandler создает новый обработчик служебных эндпоинтов
func NewSystemHandler(auditService *services.AuditService) *SystemHandler {
	return &SystemHandler{
		auditService: auditService,
		startedAt:    time.Now(),
	}
}

// HandleHealth обработчик проверки живости
// @Summary Проверка живости сервиса
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Статус сервиса"
// @Router /api/health [get]
func (h *SystemHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "hc-tracker",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

// HandleHistoryAudit обработчик сверки счетчиков истории
// @Summary Сверить счетчики запусков
// @Description Пересчитывает total_runs каждого заказчика от журнала завершенных
// @Description сессий и исправляет расхождения; авторитетное значение всегда побеждает
// @Tags system
// @Produce json
// @Success 200 {object} services.AuditReport "Итог сверки"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/history/audit [post]
func (h *SystemHandler) HandleHistoryAudit(c *gin.Context) {
	report, err := h.auditService.AuditAll()
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, report)
}

// HandleErrorMetrics обработчик метрик ошибок
// @Summary Получить метрики ошибок API
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Счетчики ошибок по кодам и эндпоинтам"
// @Router /api/system/errors [get]
func (h *SystemHandler) HandleErrorMetrics(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, middleware.GetErrorMetrics().GetMetrics())
}
