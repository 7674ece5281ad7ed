// Package importer разбирает загружаемые файлы отчетов Health Check:
// проверку имени файла по соглашению и чтение содержимого xlsx/csv.
package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Соглашение об именовании отчетов: HC_<заказчик>_<сеть>_<YYYYMMDD>.<xlsx|csv>
// Подчеркивание служит разделителем, поэтому внутри имен не допускается.
var reportNamePattern = regexp.MustCompile(`^HC_([^_]+)_([^_]+)_(\d{8})$`)

// ReportName разобранное имя файла отчета
type ReportName struct {
	Customer   string
	Network    string
	ReportDate time.Time
	Extension  string // ".xlsx" или ".csv"
}

// ParseReportFilename проверяет имя файла отчета по соглашению
// и извлекает заказчика, сеть и дату отчета
func ParseReportFilename(filename string) (*ReportName, error) {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))

	if ext != ".xlsx" && ext != ".csv" {
		return nil, fmt.Errorf("неподдерживаемое расширение отчета %q (ожидается .xlsx или .csv)", ext)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	matches := reportNamePattern.FindStringSubmatch(stem)
	if matches == nil {
		return nil, fmt.Errorf("имя файла %q не соответствует соглашению HC_<заказчик>_<сеть>_<ГГГГММДД>", base)
	}

	reportDate, err := time.Parse("20060102", matches[3])
	if err != nil {
		return nil, fmt.Errorf("некорректная дата в имени файла %q: %w", base, err)
	}

	return &ReportName{
		Customer:   strings.TrimSpace(matches[1]),
		Network:    strings.TrimSpace(matches[2]),
		ReportDate: reportDate,
		Extension:  ext,
	}, nil
}
