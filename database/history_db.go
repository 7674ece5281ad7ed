package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hctracker/history"
)

// ErrHistoryNotFound строка истории для заказчика не найдена
var ErrHistoryNotFound = errors.New("run history row not found")

// HistoryRow строка помесячной истории запусков одной пары (заказчик, сеть).
// total_runs всегда пересчитывается от авторитетного числа завершенных сессий
// и никогда не выводится из числа заполненных месяцев.
type HistoryRow struct {
	CustomerID int               `json:"customer_id"`
	TotalRuns  int               `json:"total_runs"`
	Months     map[string]string `json:"monthly_history"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ReconcileResult результат применения события завершения к строке истории
type ReconcileResult struct {
	// MapChanged изменилась ли карта monthly_history
	MapChanged bool
	// PrevTotal сохраненное значение счетчика до пересчета
	PrevTotal int
	// TotalRuns авторитетное значение счетчика после пересчета
	TotalRuns int
	// CounterDrifted расходился ли сохраненный счетчик с авторитетным
	// значением еще до этого события
	CounterDrifted bool
}

// scanHistoryRow разбирает строку истории, декодируя JSON карту месяцев
func scanHistoryRow(customerID int, totalRuns int, monthsJSON string, updatedAt time.Time) (*HistoryRow, error) {
	months := make(map[string]string)
	if monthsJSON != "" {
		if err := json.Unmarshal([]byte(monthsJSON), &months); err != nil {
			return nil, fmt.Errorf("failed to decode monthly_history for customer %d: %w", customerID, err)
		}
	}
	return &HistoryRow{
		CustomerID: customerID,
		TotalRuns:  totalRuns,
		Months:     months,
		UpdatedAt:  updatedAt,
	}, nil
}

// GetHistoryRow возвращает строку истории заказчика
func (db *DB) GetHistoryRow(customerID int) (*HistoryRow, error) {
	var totalRuns int
	var monthsJSON string
	var updatedAt time.Time
	err := db.conn.QueryRow(
		`SELECT total_runs, monthly_history, updated_at
		 FROM run_history WHERE customer_id = ?`,
		customerID,
	).Scan(&totalRuns, &monthsJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run history for customer %d: %w", customerID, err)
	}
	return scanHistoryRow(customerID, totalRuns, monthsJSON, updatedAt)
}

// ListHistoryRowsByName возвращает строки истории всех сетей одного
// display-имени в стабильном порядке (по имени сети)
func (db *DB) ListHistoryRowsByName(name string) ([]history.StoreRow, error) {
	rows, err := db.conn.Query(
		`SELECT c.id, c.network_name, h.total_runs, h.monthly_history
		 FROM customers c
		 JOIN run_history h ON h.customer_id = c.id
		 WHERE c.name = ? AND c.deleted = 0
		 ORDER BY c.network_name`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run history for %q: %w", name, err)
	}
	defer rows.Close()

	var result []history.StoreRow
	for rows.Next() {
		var customerID, totalRuns int
		var network, monthsJSON string
		if err := rows.Scan(&customerID, &network, &totalRuns, &monthsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run history row: %w", err)
		}

		months := make(map[string]string)
		if monthsJSON != "" {
			if err := json.Unmarshal([]byte(monthsJSON), &months); err != nil {
				return nil, fmt.Errorf("failed to decode monthly_history for customer %d: %w", customerID, err)
			}
		}

		result = append(result, history.StoreRow{
			CustomerID: customerID,
			Network:    network,
			TotalRuns:  totalRuns,
			Months:     months,
		})
	}
	return result, rows.Err()
}

// countCompletedSessionsTx авторитетное число завершенных сессий заказчика.
// Сессии дедуплицированы по UUID, поэтому повтор события никогда
// не удваивает счетчик.
func countCompletedSessionsTx(tx *sql.Tx, customerID int) (int, error) {
	var count int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE customer_id = ? AND status = ?`,
		customerID, SessionStatusCompleted,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	return count, nil
}

// ReconcileCompletion применяет событие завершения к строке истории заказчика
// в одной транзакции. Последовательность чтение-сравнение-запись политики
// "поздняя дата побеждает" не безопасна без сериализации, поэтому обновления
// одной строки линеаризуются транзакцией; строки разных заказчиков независимы.
func (db *DB) ReconcileCompletion(customerID int, eventDate time.Time) (*ReconcileResult, error) {
	// Единственный писатель SQLite сериализует транзакции записи,
	// исключая гонку между конкурентными завершениями одной строки
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer tx.Rollback()

	var totalRuns int
	var monthsJSON string
	err = tx.QueryRow(
		`SELECT total_runs, monthly_history FROM run_history WHERE customer_id = ?`,
		customerID,
	).Scan(&totalRuns, &monthsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run history for customer %d: %w", customerID, err)
	}

	months := make(map[string]string)
	if monthsJSON != "" {
		if err := json.Unmarshal([]byte(monthsJSON), &months); err != nil {
			return nil, fmt.Errorf("failed to decode monthly_history for customer %d: %w", customerID, err)
		}
	}

	mapChanged := history.ApplyCompletion(months, eventDate)

	// Счетчик пересчитывается от журнала сессий, а не от карты месяцев:
	// месяц с пятью запусками хранит одну ячейку, но пять событий
	authoritative, err := countCompletedSessionsTx(tx, customerID)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(months)
	if err != nil {
		return nil, fmt.Errorf("failed to encode monthly_history: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE run_history
		 SET total_runs = ?, monthly_history = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE customer_id = ?`,
		authoritative, string(encoded), customerID,
	); err != nil {
		return nil, fmt.Errorf("failed to update run history for customer %d: %w", customerID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconcile transaction: %w", err)
	}

	return &ReconcileResult{
		MapChanged:     mapChanged,
		PrevTotal:      totalRuns,
		TotalRuns:      authoritative,
		CounterDrifted: totalRuns != authoritative,
	}, nil
}

// RecountTotalRuns пересчитывает счетчик строки истории от журнала сессий
// без применения события. Возвращает прежнее и новое значения.
func (db *DB) RecountTotalRuns(customerID int) (prev, current int, err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin recount transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`SELECT total_runs FROM run_history WHERE customer_id = ?`,
		customerID,
	).Scan(&prev)
	if err == sql.ErrNoRows {
		return 0, 0, ErrHistoryNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read total_runs for customer %d: %w", customerID, err)
	}

	current, err = countCompletedSessionsTx(tx, customerID)
	if err != nil {
		return 0, 0, err
	}

	if current != prev {
		if _, err := tx.Exec(
			`UPDATE run_history SET total_runs = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE customer_id = ?`,
			current, customerID,
		); err != nil {
			return 0, 0, fmt.Errorf("failed to update total_runs for customer %d: %w", customerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit recount transaction: %w", err)
	}
	return prev, current, nil
}

// ListHistoryCustomerIDs возвращает идентификаторы всех строк истории
// неудаленных заказчиков
func (db *DB) ListHistoryCustomerIDs() ([]int, error) {
	rows, err := db.conn.Query(
		`SELECT h.customer_id
		 FROM run_history h
		 JOIN customers c ON c.id = h.customer_id
		 WHERE c.deleted = 0
		 ORDER BY h.customer_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run history ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run history id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetMonthSentinel выставляет статусную метку в месяц строки истории.
// Конкретная дата меткой не затирается: ручная правка не должна
// откатывать реальный запуск.
func (db *DB) SetMonthSentinel(customerID int, monthKey string, sentinel history.Sentinel) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sentinel transaction: %w", err)
	}
	defer tx.Rollback()

	var monthsJSON string
	err = tx.QueryRow(
		`SELECT monthly_history FROM run_history WHERE customer_id = ?`,
		customerID,
	).Scan(&monthsJSON)
	if err == sql.ErrNoRows {
		return ErrHistoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read monthly_history for customer %d: %w", customerID, err)
	}

	months := make(map[string]string)
	if monthsJSON != "" {
		if err := json.Unmarshal([]byte(monthsJSON), &months); err != nil {
			return fmt.Errorf("failed to decode monthly_history for customer %d: %w", customerID, err)
		}
	}

	if existing, ok := months[monthKey]; ok {
		if cell := history.ParseCell(existing); cell.Kind == history.CellDate {
			return fmt.Errorf("month %s already holds a completion date", monthKey)
		}
	}
	months[monthKey] = string(sentinel)

	encoded, err := json.Marshal(months)
	if err != nil {
		return fmt.Errorf("failed to encode monthly_history: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE run_history SET monthly_history = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE customer_id = ?`,
		string(encoded), customerID,
	); err != nil {
		return fmt.Errorf("failed to update monthly_history for customer %d: %w", customerID, err)
	}

	return tx.Commit()
}
