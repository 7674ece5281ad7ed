// Package services содержит бизнес-логику трекера Health Check поверх
// слоя базы данных: сверку истории, сессии, загрузки, дашборд и экспорт.
package services

import (
	"errors"
	"log/slog"
	"time"

	"hctracker/database"
	"hctracker/history"
	apperrors "hctracker/server/errors"
)

// HistoryService сервис сверки помесячной истории запусков
type HistoryService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewHistoryService создает новый сервис сверки истории
func NewHistoryService(db *database.DB, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{db: db, logger: logger}
}

// RecordCompletion применяет событие завершения запуска к строке истории
// заказчика. Временная метка обязана быть разбираемой: событие с пустой
// или нераспознаваемой меткой отклоняется, текущее время не подставляется.
func (s *HistoryService) RecordCompletion(customerID int, rawTimestamp string) (*database.ReconcileResult, error) {
	eventDate, err := history.ParseEventDate(rawTimestamp)
	if err != nil {
		var invalid *history.InvalidEventError
		if errors.As(err, &invalid) {
			return nil, apperrors.NewInvalidEventError(rawTimestamp, err)
		}
		return nil, apperrors.NewInternalError("не удалось разобрать временную метку события", err)
	}

	return s.recordCompletionDate(customerID, eventDate)
}

// recordCompletionDate применяет уже разобранное событие завершения
func (s *HistoryService) recordCompletionDate(customerID int, eventDate time.Time) (*database.ReconcileResult, error) {
	result, err := s.db.ReconcileCompletion(customerID, eventDate)
	if err != nil {
		if errors.Is(err, database.ErrHistoryNotFound) {
			return nil, apperrors.NewNotFoundError("строка истории заказчика не найдена", err)
		}
		return nil, apperrors.NewInternalError("не удалось применить событие завершения", err)
	}

	// Дрейф счетчика не фатален: авторитетное значение уже записано,
	// коррекция только логируется
	if result.CounterDrifted {
		s.logger.Warn("inconsistent total_runs counter corrected",
			"customer_id", customerID,
			"stored", result.PrevTotal,
			"authoritative", result.TotalRuns,
		)
	}

	return result, nil
}

// SetMonthSentinel выставляет статусную метку в месяц заказчика.
// Метка не может затереть конкретную дату запуска.
func (s *HistoryService) SetMonthSentinel(customerID int, monthKey string, raw string) error {
	if _, err := time.Parse(history.MonthKeyLayout, monthKey); err != nil {
		return apperrors.NewValidationError("некорректный ключ месяца, ожидается YYYY-MM", err)
	}

	if !history.IsSentinelValue(raw) {
		return apperrors.NewValidationError("недопустимая статусная метка", nil)
	}

	if err := s.db.SetMonthSentinel(customerID, monthKey, history.Sentinel(raw)); err != nil {
		if errors.Is(err, database.ErrHistoryNotFound) {
			return apperrors.NewNotFoundError("строка истории заказчика не найдена", err)
		}
		return apperrors.WrapError(err, "не удалось записать статусную метку")
	}
	return nil
}

// GetHistoryRow возвращает строку истории заказчика
func (s *HistoryService) GetHistoryRow(customerID int) (*database.HistoryRow, error) {
	row, err := s.db.GetHistoryRow(customerID)
	if err != nil {
		if errors.Is(err, database.ErrHistoryNotFound) {
			return nil, apperrors.NewNotFoundError("строка истории заказчика не найдена", err)
		}
		return nil, apperrors.NewInternalError("не удалось прочитать историю запусков", err)
	}
	return row, nil
}
