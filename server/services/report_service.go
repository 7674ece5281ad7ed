package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "hctracker/server/errors"
)

// trackerHeaders заголовки трекера: имя, счетчик и 12 месяцев
var trackerHeaders = []string{
	"Customer", "Network", "Total Runs",
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ReportService экспортирует дашборд в xlsx и csv.
// Сервис потребляет готовые строки DashboardService: экспорт и живой
// дашборд обязаны быть побайтно одинаковы для одного состояния и фильтра.
type ReportService struct {
	dashboardService *DashboardService
	logger           *slog.Logger
}

// NewReportService создает новый сервис экспорта
func NewReportService(dashboardService *DashboardService, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{dashboardService: dashboardService, logger: logger}
}

// flattenRows разворачивает строки дашборда в плоские записи экспорта:
// объединенная строка заказчика, затем строка на каждую сеть
func flattenRows(rows []CustomerDashboardRow) [][]string {
	records := make([][]string, 0, len(rows)*2)
	for _, row := range rows {
		record := append([]string{row.Name, "ALL", fmt.Sprintf("%d", row.TotalRuns)}, row.Months...)
		records = append(records, record)

		// Одиночная сеть не дублирует объединенную строку
		if len(row.Networks) < 2 {
			continue
		}
		for _, network := range row.Networks {
			record := append([]string{row.Name, network.Network, fmt.Sprintf("%d", network.TotalRuns)}, network.Months...)
			records = append(records, record)
		}
	}
	return records
}

// ExportCSV экспортирует дашборд в CSV
func (s *ReportService) ExportCSV(filter DashboardFilter) ([]byte, error) {
	rows, err := s.dashboardService.BuildDashboard(filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(trackerHeaders); err != nil {
		return nil, apperrors.NewInternalError("не удалось записать заголовки CSV", err)
	}
	for _, record := range flattenRows(rows) {
		if err := writer.Write(record); err != nil {
			return nil, apperrors.NewInternalError("не удалось записать строку CSV", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperrors.NewInternalError("не удалось завершить запись CSV", err)
	}
	return buf.Bytes(), nil
}

// ExportExcel экспортирует дашборд в xlsx
func (s *ReportService) ExportExcel(filter DashboardFilter) ([]byte, error) {
	rows, err := s.dashboardService.BuildDashboard(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tracker"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось создать лист трекера", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("failed to drop default sheet", "error", err)
	}

	// Заголовки
	headerRow := make([]interface{}, len(trackerHeaders))
	for i, h := range trackerHeaders {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, apperrors.NewInternalError("не удалось записать заголовки xlsx", err)
	}

	// Жирный шрифт для строки заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(trackerHeaders), 1)
		if endCell != "" {
			f.SetCellStyle(sheet, "A1", endCell, headerStyle)
		}
	}

	// Данные
	for i, record := range flattenRows(rows) {
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.NewInternalError("не удалось вычислить адрес ячейки", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, apperrors.NewInternalError("не удалось записать строку xlsx", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.NewInternalError("не удалось сериализовать xlsx", err)
	}
	return buf.Bytes(), nil
}
