package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "hctracker/server/errors"
	"hctracker/server/middleware"
	"hctracker/server/services"
)

// DashboardHandler обработчик трекера запусков Health Check
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler создает новый обработчик дашборда
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardResponse структура ответа дашборда
type DashboardResponse struct {
	Year      int                             `json:"year"`
	Customers []services.CustomerDashboardRow `json:"customers"`
	Total     int                             `json:"total"`
}

// parseDashboardFilter читает параметры выборки дашборда из query строки.
// Используется и дашбордом, и экспортом, чтобы оба видели одинаковые значения.
func parseDashboardFilter(c *gin.Context) (services.DashboardFilter, error) {
	var filter services.DashboardFilter

	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return filter, apperrors.NewValidationError("некорректный параметр year", err)
		}
		filter.Year = year
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"start_month", &filter.StartMonth},
		{"end_month", &filter.EndMonth},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return filter, apperrors.NewValidationError(
				fmt.Sprintf("параметр %s должен быть месяцем 1..12", p.name), err)
		}
		*p.dst = month
	}

	if filter.StartMonth != 0 && filter.EndMonth != 0 && filter.StartMonth > filter.EndMonth {
		return filter, apperrors.NewValidationError("start_month не может быть позже end_month", nil)
	}

	filter.OnlyWithData = c.Query("only_with_data") == "true"
	return filter, nil
}

// HandleGetDashboard обработчик дашборда трекера
// @Summary Получить дашборд запусков
// @Description Возвращает строки трекера: объединенная строка заказчика и строки его сетей,
// @Description 12 слотов месяцев выбранного года с датами последних запусков или метками статуса
// @Tags dashboard
// @Produce json
// @Param year query int false "Год выборки (по умолчанию текущий)"
// @Param start_month query int false "Первый месяц диапазона 1..12"
// @Param end_month query int false "Последний месяц диапазона 1..12"
// @Param only_with_data query bool false "Скрыть заказчиков без данных в диапазоне"
// @Success 200 {object} DashboardResponse "Строки дашборда"
// @Failure 400 {object} ErrorResponse "Ошибка валидации параметров"
// @Router /api/dashboard [get]
func (h *DashboardHandler) HandleGetDashboard(c *gin.Context) {
	filter, err := parseDashboardFilter(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	rows, err := h.dashboardService.BuildDashboard(filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, DashboardResponse{
		Year:      filter.Year,
		Customers: rows,
		Total:     len(rows),
	})
}

// HandleGetCustomerDashboard обработчик дашборда одного заказчика
// @Summary Получить строку дашборда заказчика
// @Description Возвращает объединенную строку заказчика и строки всех его сетей
// @Tags dashboard
// @Produce json
// @Param name path string true "Имя заказчика"
// @Param year query int false "Год выборки (по умолчанию текущий)"
// @Param start_month query int false "Первый месяц диапазона 1..12"
// @Param end_month query int false "Последний месяц диапазона 1..12"
// @Success 200 {object} services.CustomerDashboardRow "Строка заказчика"
// @Failure 404 {object} ErrorResponse "Заказчик не найден"
// @Router /api/dashboard/{name} [get]
func (h *DashboardHandler) HandleGetCustomerDashboard(c *gin.Context) {
	filter, err := parseDashboardFilter(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	row, err := h.dashboardService.BuildCustomerDashboard(c.Param("name"), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, row)
}
