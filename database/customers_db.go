package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCustomerNotFound заказчик не найден или удален
var ErrCustomerNotFound = errors.New("customer not found")

// ErrCustomerExists заказчик с такой парой (имя, сеть) уже существует
var ErrCustomerExists = errors.New("customer already exists")

// Customer заказчик; одна строка на физическую сеть.
// Несколько строк могут разделять одно display-имя (по строке на сеть).
type Customer struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	NetworkName string    `json:"network_name"`
	Deleted     bool      `json:"deleted,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCustomer создает заказчика и его пустую строку истории запусков
// в одной транзакции
func (db *DB) CreateCustomer(name, networkName string) (*Customer, error) {
	name = strings.TrimSpace(name)
	networkName = strings.TrimSpace(networkName)
	if name == "" {
		return nil, fmt.Errorf("customer name must not be empty")
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Уникальность проверяется среди неудаленных строк
	var existing int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM customers WHERE name = ? AND network_name = ? AND deleted = 0`,
		name, networkName,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer uniqueness: %w", err)
	}
	if existing > 0 {
		return nil, ErrCustomerExists
	}

	result, err := tx.Exec(
		`INSERT INTO customers (name, network_name) VALUES (?, ?)`,
		name, networkName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get customer id: %w", err)
	}

	// Строка истории создается пустой вместе с заказчиком
	if _, err := tx.Exec(
		`INSERT INTO run_history (customer_id, total_runs, monthly_history) VALUES (?, 0, '{}')`,
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to create run history row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit customer creation: %w", err)
	}

	return db.GetCustomer(int(id))
}

// GetCustomer возвращает заказчика по идентификатору (включая удаленных)
func (db *DB) GetCustomer(id int) (*Customer, error) {
	var c Customer
	var deleted int
	err := db.conn.QueryRow(
		`SELECT id, name, network_name, deleted, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.NetworkName, &deleted, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	c.Deleted = deleted != 0
	return &c, nil
}

// ListCustomers возвращает всех неудаленных заказчиков,
// отсортированных по имени и сети
func (db *DB) ListCustomers() ([]Customer, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, network_name, created_at, updated_at
		 FROM customers WHERE deleted = 0
		 ORDER BY name, network_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.NetworkName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListCustomersByName возвращает все неудаленные строки одного display-имени
// (по строке на сеть), отсортированные по имени сети
func (db *DB) ListCustomersByName(name string) ([]Customer, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, network_name, created_at, updated_at
		 FROM customers WHERE name = ? AND deleted = 0
		 ORDER BY network_name`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers by name: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.NetworkName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// FindCustomer ищет неудаленного заказчика по паре (имя, сеть)
func (db *DB) FindCustomer(name, networkName string) (*Customer, error) {
	var c Customer
	err := db.conn.QueryRow(
		`SELECT id, name, network_name, created_at, updated_at
		 FROM customers WHERE name = ? AND network_name = ? AND deleted = 0`,
		name, networkName,
	).Scan(&c.ID, &c.Name, &c.NetworkName, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}

// UpdateCustomer обновляет имя и сеть заказчика
func (db *DB) UpdateCustomer(id int, name, networkName string) (*Customer, error) {
	name = strings.TrimSpace(name)
	networkName = strings.TrimSpace(networkName)
	if name == "" {
		return nil, fmt.Errorf("customer name must not be empty")
	}

	result, err := db.conn.Exec(
		`UPDATE customers SET name = ?, network_name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted = 0`,
		name, networkName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrCustomerNotFound
	}

	return db.GetCustomer(id)
}

// SoftDeleteCustomer помечает заказчика удаленным.
// Строка истории сохраняется до физического удаления заказчика.
func (db *DB) SoftDeleteCustomer(id int) error {
	result, err := db.conn.Exec(
		`UPDATE customers SET deleted = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted = 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete customer %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// CustomerNames возвращает отсортированный список уникальных display-имен
// неудаленных заказчиков
func (db *DB) CustomerNames() ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT DISTINCT name FROM customers WHERE deleted = 0 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan customer name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
