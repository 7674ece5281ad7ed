// Package database содержит слой доступа к SQLite базе трекера Health Check:
// заказчики, сессии обработки, загруженные отчеты и помесячная история запусков.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB обертка для работы с базой данных трекера
type DB struct {
	conn             *sql.DB
	path             string
	tableCreateMutex sync.Mutex // Мьютекс для создания таблиц (защита от race condition)
}

// nullString разворачивает sql.NullString в обычную строку
func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?_mode=memory&cache=shared также хранит БД в памяти
	if strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory") {
		return true
	}

	return false
}

// NewDB создает новое подключение к базе данных с настройками по умолчанию
func NewDB(dbPath string) (*DB, error) {
	return NewDBWithConfig(dbPath, DBConfig{})
}

// NewDBWithConfig создает новое подключение к базе данных с конфигурацией
func NewDBWithConfig(dbPath string, config DBConfig) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка connection pooling
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		// Ограничиваем до 10 для предотвращения блокировок
		conn.SetMaxOpenConns(10)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	// Проверяем подключение
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Включаем поддержку FOREIGN KEY constraints в SQLite
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Включаем WAL режим для улучшения конкурентности чтения
	// WAL позволяет множественным читателям работать одновременно без блокировок
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		// Логируем, но не прерываем инициализацию, так как это не критично
		log.Printf("[DB] Warning: Failed to enable WAL mode: %v", err)
	}

	// Ожидаем снятия блокировки вместо немедленной ошибки SQLITE_BUSY
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Printf("[DB] Warning: Failed to set busy_timeout: %v", err)
	}

	db := &DB{conn: conn, path: dbPath}

	// Инициализируем схему
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close закрывает подключение к базе данных
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Path возвращает путь к файлу базы данных
func (db *DB) Path() string {
	return db.path
}

// GetConnection возвращает указатель на sql.DB для прямого доступа
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// initSchema создает таблицы трекера, если их еще нет
func (db *DB) initSchema() error {
	db.tableCreateMutex.Lock()
	defer db.tableCreateMutex.Unlock()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			network_name TEXT NOT NULL DEFAULT '',
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Уникальность (name, network_name) действует только среди неудаленных строк
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_name_network
			ON customers(name, network_name) WHERE deleted = 0`,
		`CREATE TABLE IF NOT EXISTS run_history (
			customer_id INTEGER PRIMARY KEY REFERENCES customers(id) ON DELETE CASCADE,
			total_runs INTEGER NOT NULL DEFAULT 0,
			monthly_history TEXT NOT NULL DEFAULT '{}',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			file_id TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			completed_at TEXT,
			error_message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_customer_status
			ON sessions(customer_id, status)`,
		`CREATE TABLE IF NOT EXISTS report_files (
			id TEXT PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			original_name TEXT NOT NULL,
			stored_path TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_files_customer
			ON report_files(customer_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return runHistoryMigrations(db.conn)
}
