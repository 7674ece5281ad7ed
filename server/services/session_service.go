package services

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"hctracker/database"
	"hctracker/history"
	apperrors "hctracker/server/errors"
)

// SessionService сервис сессий обработки Health Check
type SessionService struct {
	db             *database.DB
	historyService *HistoryService
	logger         *slog.Logger
}

// NewSessionService создает новый сервис сессий
func NewSessionService(db *database.DB, historyService *HistoryService, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		db:             db,
		historyService: historyService,
		logger:         logger,
	}
}

// CreateSession создает сессию обработки для заказчика
func (s *SessionService) CreateSession(customerID int, fileID string) (*database.Session, error) {
	if _, err := s.db.GetCustomer(customerID); err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return nil, apperrors.NewNotFoundError("заказчик не найден", err)
		}
		return nil, apperrors.NewInternalError("не удалось проверить заказчика", err)
	}

	session, err := s.db.CreateSession(uuid.New().String(), customerID, fileID)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось создать сессию", err)
	}
	return session, nil
}

// GetSession возвращает сессию по идентификатору
func (s *SessionService) GetSession(id string) (*database.Session, error) {
	session, err := s.db.GetSession(id)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("сессия не найдена", err)
		}
		return nil, apperrors.NewInternalError("не удалось прочитать сессию", err)
	}
	return session, nil
}

// ListSessions возвращает сессии с фильтрами
func (s *SessionService) ListSessions(customerID int, status string, limit int) ([]database.Session, error) {
	sessions, err := s.db.ListSessions(customerID, status, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось получить список сессий", err)
	}
	return sessions, nil
}

// CompleteSession переводит сессию в терминальный успех и применяет
// событие завершения к истории заказчика. Вызов идемпотентен по UUID
// сессии: повтор для уже завершенной сессии повторяет только сверку,
// которая сама по себе безопасна, и не удваивает счетчик.
func (s *SessionService) CompleteSession(id string, completedAt string) (*database.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	if session.Status == database.SessionStatusFailed {
		return nil, apperrors.NewConflictError("сессия уже завершилась ошибкой", nil)
	}

	// Повтор завершения использует метку исходного события: UUID сессии
	// является ключом идемпотентности, вторая метка не создает второго
	// события и не сдвигает месяц
	if session.Status == database.SessionStatusCompleted {
		completedAt = session.CompletedAt
	}

	// Временная метка проверяется до перевода статуса: событие без метки
	// отклоняется целиком, сессия остается в прежнем состоянии
	if _, err := history.ParseEventDate(completedAt); err != nil {
		return nil, apperrors.NewInvalidEventError(completedAt, err)
	}

	transitioned, err := s.db.MarkSessionCompleted(id, completedAt)
	if err != nil {
		return nil, apperrors.WrapError(err, "не удалось завершить сессию")
	}
	if !transitioned {
		s.logger.Info("session completion replayed",
			"session_id", id,
			"customer_id", session.CustomerID,
		)
	}

	// Сверка идет после перевода статуса: авторитетный счетчик считается
	// по завершенным сессиям и обязан видеть эту сессию
	result, err := s.historyService.RecordCompletion(session.CustomerID, completedAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("health check run recorded",
		"session_id", id,
		"customer_id", session.CustomerID,
		"completed_at", completedAt,
		"total_runs", result.TotalRuns,
	)

	return s.GetSession(id)
}

// FailSession переводит сессию в терминальную ошибку.
// История заказчика не изменяется: неуспешный запуск не является событием.
func (s *SessionService) FailSession(id string, errorMessage string) (*database.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.Status == database.SessionStatusCompleted {
		return nil, apperrors.NewConflictError("сессия уже завершена успешно", nil)
	}
	if session.Status == database.SessionStatusFailed {
		return session, nil
	}

	if err := s.db.MarkSessionFailed(id, errorMessage); err != nil {
		return nil, apperrors.WrapError(err, "не удалось пометить сессию ошибочной")
	}
	return s.GetSession(id)
}

// StartProcessing переводит сессию из pending в processing
func (s *SessionService) StartProcessing(id string) error {
	if err := s.db.MarkSessionProcessing(id); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return apperrors.NewConflictError("сессия не находится в ожидании обработки", err)
		}
		return apperrors.NewInternalError("не удалось начать обработку сессии", err)
	}
	return nil
}
