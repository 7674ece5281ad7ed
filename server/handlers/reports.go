package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hctracker/server/middleware"
	"hctracker/server/services"
)

// ReportHandler обработчик экспорта трекера запусков
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler создает новый обработчик экспорта
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// HandleExportExcel обработчик экспорта трекера в Excel
// @Summary Экспортировать трекер в Excel
// @Description Выгружает строки дашборда в xlsx; значения идентичны ответу /api/dashboard
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Год выборки (по умолчанию текущий)"
// @Param start_month query int false "Первый месяц диапазона 1..12"
// @Param end_month query int false "Последний месяц диапазона 1..12"
// @Param only_with_data query bool false "Скрыть заказчиков без данных в диапазоне"
// @Success 200 {file} binary "Файл xlsx"
// @Failure 400 {object} ErrorResponse "Ошибка валидации параметров"
// @Router /api/export/tracker.xlsx [get]
func (h *ReportHandler) HandleExportExcel(c *gin.Context) {
	filter, err := parseDashboardFilter(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	data, err := h.reportService.ExportExcel(filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	filename := exportFilename(filter, "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// HandleExportCSV обработчик экспорта трекера в CSV
// @Summary Экспортировать трекер в CSV
// @Description Выгружает строки дашборда в CSV; значения идентичны ответу /api/dashboard
// @Tags export
// @Produce text/csv
// @Param year query int false "Год выборки (по умолчанию текущий)"
// @Param start_month query int false "Первый месяц диапазона 1..12"
// @Param end_month query int false "Последний месяц диапазона 1..12"
// @Param only_with_data query bool false "Скрыть заказчиков без данных в диапазоне"
// @Success 200 {file} binary "Файл CSV"
// @Failure 400 {object} ErrorResponse "Ошибка валидации параметров"
// @Router /api/export/tracker.csv [get]
func (h *ReportHandler) HandleExportCSV(c *gin.Context) {
	filter, err := parseDashboardFilter(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	data, err := h.reportService.ExportCSV(filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	filename := exportFilename(filter, "csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// exportFilename строит имя выгружаемого файла по фильтру
func exportFilename(filter services.DashboardFilter, ext string) string {
	if filter.Year == 0 {
		return fmt.Sprintf("tracker.%s", ext)
	}
	return fmt.Sprintf("tracker_%d.%s", filter.Year, ext)
}
