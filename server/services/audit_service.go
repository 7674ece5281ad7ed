package services

import (
	"log/slog"

	"hctracker/database"
	apperrors "hctracker/server/errors"
)

// AuditService сверяет сохраненные счетчики total_runs с авторитетным
// числом завершенных сессий. Политика: авторитетное значение всегда
// побеждает, коррекция логируется, запрос никогда не падает из-за дрейфа.
type AuditService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewAuditService создает новый сервис сверки счетчиков
func NewAuditService(db *database.DB, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{db: db, logger: logger}
}

// AuditCorrection одна исправленная строка истории
type AuditCorrection struct {
	CustomerID int `json:"customer_id"`
	Stored     int `json:"stored"`
	Corrected  int `json:"corrected"`
}

// AuditReport итог прохода сверки
type AuditReport struct {
	Checked     int               `json:"checked"`
	Corrections []AuditCorrection `json:"corrections"`
}

// AuditAll пересчитывает счетчики всех строк истории от журнала сессий
func (s *AuditService) AuditAll() (*AuditReport, error) {
	ids, err := s.db.ListHistoryCustomerIDs()
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось получить строки истории", err)
	}

	report := &AuditReport{Corrections: make([]AuditCorrection, 0)}
	for _, id := range ids {
		prev, current, err := s.db.RecountTotalRuns(id)
		if err != nil {
			return nil, apperrors.NewInternalError("не удалось пересчитать счетчик", err)
		}
		report.Checked++

		if prev != current {
			report.Corrections = append(report.Corrections, AuditCorrection{
				CustomerID: id,
				Stored:     prev,
				Corrected:  current,
			})
			s.logger.Warn("inconsistent total_runs counter corrected",
				"customer_id", id,
				"stored", prev,
				"authoritative", current,
			)
		}
	}

	s.logger.Info("run history audit finished",
		"checked", report.Checked,
		"corrections", len(report.Corrections),
	)
	return report, nil
}
