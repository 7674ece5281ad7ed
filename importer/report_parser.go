package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReportSummary результат разбора содержимого отчета
type ReportSummary struct {
	// Rows число содержательных строк (без заголовка)
	Rows int
	// Headers заголовки колонок отчета
	Headers []string
}

// ParseReportFile читает файл отчета, выбирая разборщик по расширению.
// Соглашение об именовании проверяется отдельно на исходном имени файла:
// к этому моменту файл уже сохранен под служебным именем.
func ParseReportFile(path string) (*ReportSummary, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return parseExcelReport(path)
	case ".csv":
		return parseCSVReport(path)
	default:
		return nil, fmt.Errorf("неподдерживаемое расширение отчета %q", ext)
	}
}

// parseExcelReport читает первый лист xlsx отчета
func parseExcelReport(path string) (*ReportSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть xlsx отчет: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx отчет не содержит листов")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать лист %q: %w", sheets[0], err)
	}

	return summarizeRows(rows)
}

// parseCSVReport читает csv отчет с автоопределением кодировки.
// Выгрузки из старых систем часто приходят в Windows-1251,
// поэтому при невалидном UTF-8 данные перекодируются.
func parseCSVReport(path string) (*ReportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать csv отчет: %w", err)
	}

	if !utf8.Valid(data) {
		decoder := charmap.Windows1251.NewDecoder()
		fixed, _, err := transform.Bytes(decoder, data)
		if err != nil || !utf8.Valid(fixed) {
			return nil, fmt.Errorf("не удалось декодировать csv отчет из Windows-1251: %w", err)
		}
		data = fixed
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // исторические отчеты бывают неровными

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать csv отчет: %w", err)
	}

	return summarizeRows(records)
}

// summarizeRows сводит строки отчета: первая непустая строка считается
// заголовком, остальные непустые строки - данными
func summarizeRows(rows [][]string) (*ReportSummary, error) {
	summary := &ReportSummary{}

	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if summary.Headers == nil {
			headers := make([]string, len(row))
			for i, cell := range row {
				headers[i] = strings.TrimSpace(cell)
			}
			summary.Headers = headers
			continue
		}
		summary.Rows++
	}

	if summary.Headers == nil {
		return nil, fmt.Errorf("отчет пуст: не найдена строка заголовков")
	}
	return summary, nil
}

// isEmptyRow проверяет, что все ячейки строки пусты
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
