package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Статусы сессии обработки Health Check
const (
	SessionStatusPending    = "pending"
	SessionStatusProcessing = "processing"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// ErrSessionNotFound сессия не найдена
var ErrSessionNotFound = errors.New("session not found")

// Session сессия обработки одного загруженного отчета.
// UUID сессии служит ключом идемпотентности: повторное завершение
// той же сессии не создает второго события.
type Session struct {
	ID           string    `json:"id"`
	CustomerID   int       `json:"customer_id"`
	FileID       string    `json:"file_id,omitempty"`
	Status       string    `json:"status"`
	CompletedAt  string    `json:"completed_at,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateSession создает сессию в статусе pending
func (db *DB) CreateSession(id string, customerID int, fileID string) (*Session, error) {
	var fileRef interface{}
	if fileID != "" {
		fileRef = fileID
	}

	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, customer_id, file_id, status) VALUES (?, ?, ?, ?)`,
		id, customerID, fileRef, SessionStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return db.GetSession(id)
}

// GetSession возвращает сессию по идентификатору
func (db *DB) GetSession(id string) (*Session, error) {
	var s Session
	var fileID, completedAt, errorMessage sql.NullString
	err := db.conn.QueryRow(
		`SELECT id, customer_id, file_id, status, completed_at, error_message, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.CustomerID, &fileID, &s.Status, &completedAt, &errorMessage, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	s.FileID = nullString(fileID)
	s.CompletedAt = nullString(completedAt)
	s.ErrorMessage = nullString(errorMessage)
	return &s, nil
}

// ListSessions возвращает сессии с необязательными фильтрами по заказчику
// и статусу, новые первыми
func (db *DB) ListSessions(customerID int, status string, limit int) ([]Session, error) {
	query := `SELECT id, customer_id, file_id, status, completed_at, error_message, created_at, updated_at
		FROM sessions WHERE 1=1`
	args := []interface{}{}

	if customerID > 0 {
		query += " AND customer_id = ?"
		args = append(args, customerID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var fileID, completedAt, errorMessage sql.NullString
		if err := rows.Scan(&s.ID, &s.CustomerID, &fileID, &s.Status, &completedAt, &errorMessage, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.FileID = nullString(fileID)
		s.CompletedAt = nullString(completedAt)
		s.ErrorMessage = nullString(errorMessage)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkSessionProcessing переводит сессию из pending в processing
func (db *DB) MarkSessionProcessing(id string) error {
	result, err := db.conn.Exec(
		`UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		SessionStatusProcessing, id, SessionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session %s processing: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MarkSessionCompleted переводит сессию в терминальный успех.
// Возвращает true, если переход произошел впервые; повторный вызов
// для уже завершенной сессии возвращает false без изменений (идемпотентность
// по UUID сессии).
func (db *DB) MarkSessionCompleted(id string, completedAt string) (bool, error) {
	session, err := db.GetSession(id)
	if err != nil {
		return false, err
	}
	if session.Status == SessionStatusCompleted {
		return false, nil
	}
	if session.Status == SessionStatusFailed {
		return false, fmt.Errorf("session %s already failed", id)
	}

	result, err := db.conn.Exec(
		`UPDATE sessions SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN (?, ?)`,
		SessionStatusCompleted, completedAt, id, SessionStatusPending, SessionStatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark session %s completed: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// MarkSessionFailed переводит сессию в терминальную ошибку
func (db *DB) MarkSessionFailed(id string, errorMessage string) error {
	result, err := db.conn.Exec(
		`UPDATE sessions SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN (?, ?)`,
		SessionStatusFailed, errorMessage, id, SessionStatusPending, SessionStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session %s failed: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
