package database

import (
	"database/sql"
	"fmt"
)

// runHistoryMigrations выполняет миграции данных истории запусков.
// Вызывается после создания базовой схемы.
func runHistoryMigrations(db *sql.DB) error {
	// Старые базы могли содержать заказчиков без строки истории:
	// строка создается вместе с заказчиком только начиная с этой схемы
	if err := ensureMigrationApplied(db, "2025_08_backfill_history_rows", backfillHistoryRows); err != nil {
		return err
	}

	return nil
}

// backfillHistoryRows создает пустую строку истории каждому заказчику,
// у которого её нет. Счетчик заполняется от журнала завершенных сессий.
func backfillHistoryRows(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO run_history (customer_id, total_runs, monthly_history)
		SELECT c.id,
		       (SELECT COUNT(*) FROM sessions s
		        WHERE s.customer_id = c.id AND s.status = 'completed'),
		       '{}'
		FROM customers c
		WHERE NOT EXISTS (
			SELECT 1 FROM run_history h WHERE h.customer_id = c.id
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to backfill run_history rows: %w", err)
	}
	return nil
}
