package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrFileNotFound запись о загруженном отчете не найдена
var ErrFileNotFound = errors.New("report file not found")

// ReportFile запись о загруженном файле отчета Health Check
type ReportFile struct {
	ID           string    `json:"id"`
	CustomerID   int       `json:"customer_id"`
	OriginalName string    `json:"original_name"`
	StoredPath   string    `json:"stored_path"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// SaveReportFile сохраняет запись о загруженном отчете
func (db *DB) SaveReportFile(f ReportFile) error {
	_, err := db.conn.Exec(
		`INSERT INTO report_files (id, customer_id, original_name, stored_path, size_bytes)
		 VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.CustomerID, f.OriginalName, f.StoredPath, f.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report file: %w", err)
	}
	return nil
}

// GetReportFile возвращает запись о загруженном отчете по идентификатору
func (db *DB) GetReportFile(id string) (*ReportFile, error) {
	var f ReportFile
	err := db.conn.QueryRow(
		`SELECT id, customer_id, original_name, stored_path, size_bytes, uploaded_at
		 FROM report_files WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.CustomerID, &f.OriginalName, &f.StoredPath, &f.SizeBytes, &f.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report file %s: %w", id, err)
	}
	return &f, nil
}

// ListReportFiles возвращает записи об отчетах заказчика, новые первыми
func (db *DB) ListReportFiles(customerID int) ([]ReportFile, error) {
	rows, err := db.conn.Query(
		`SELECT id, customer_id, original_name, stored_path, size_bytes, uploaded_at
		 FROM report_files WHERE customer_id = ?
		 ORDER BY uploaded_at DESC, id DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list report files: %w", err)
	}
	defer rows.Close()

	var files []ReportFile
	for rows.Next() {
		var f ReportFile
		if err := rows.Scan(&f.ID, &f.CustomerID, &f.OriginalName, &f.StoredPath, &f.SizeBytes, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
