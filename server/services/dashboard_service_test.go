package services

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"hctracker/database"
)

func newServiceTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStack(t *testing.T) (*database.DB, *HistoryService, *SessionService) {
	t.Helper()
	db := newServiceTestDB(t)
	historyService := NewHistoryService(db, slog.Default())
	sessionService := NewSessionService(db, historyService, slog.Default())
	return db, historyService, sessionService
}

// recordRun создает заказчику завершенную сессию с датой запуска
func recordRun(t *testing.T, db *database.DB, sessionService *SessionService, customerID int, date string) {
	t.Helper()
	session, err := db.CreateSession(uuid.New().String(), customerID, "")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if _, err := sessionService.CompleteSession(session.ID, date); err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}
}

func TestBuildDashboard_MergesNetworksWithDatePriority(t *testing.T) {
	db, historyService, sessionService := newTestStack(t)

	north, err := db.CreateCustomer("Acme", "North")
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	south, err := db.CreateCustomer("Acme", "South")
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	// North имеет метку в июне, South - реальный запуск
	if err := historyService.SetMonthSentinel(north.ID, "2025-06", "Not Started"); err != nil {
		t.Fatalf("failed to set sentinel: %v", err)
	}
	recordRun(t, db, sessionService, south.ID, "2025-06-14")

	dashboard := NewDashboardService(db, slog.Default())
	rows, err := dashboard.BuildDashboard(DashboardFilter{Year: 2025})
	if err != nil {
		t.Fatalf("BuildDashboard returned error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected one customer row, got %d", len(rows))
	}
	row := rows[0]
	if row.Name != "Acme" {
		t.Fatalf("expected Acme, got %s", row.Name)
	}
	// Конкретная дата побеждает метку и форматируется днем вперед
	if row.Months[5] != "14/06" {
		t.Fatalf("expected merged June token 14/06, got %q", row.Months[5])
	}
	if row.TotalRuns != 1 {
		t.Fatalf("expected total runs 1, got %d", row.TotalRuns)
	}
	if len(row.Networks) != 2 {
		t.Fatalf("expected two network rows, got %d", len(row.Networks))
	}
	// Сети отсортированы по имени
	if row.Networks[0].Network != "North" || row.Networks[1].Network != "South" {
		t.Fatalf("unexpected network order: %s, %s", row.Networks[0].Network, row.Networks[1].Network)
	}
	if row.Networks[0].Months[5] != "Not Started" {
		t.Fatalf("expected sentinel in North June, got %q", row.Networks[0].Months[5])
	}
}

func TestBuildDashboard_OnlyWithDataFiltersCustomers(t *testing.T) {
	db, _, sessionService := newTestStack(t)

	active, _ := db.CreateCustomer("Active", "Core")
	if _, err := db.CreateCustomer("Idle", "Core"); err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	recordRun(t, db, sessionService, active.ID, "2025-10-08")

	dashboard := NewDashboardService(db, slog.Default())

	all, err := dashboard.BuildDashboard(DashboardFilter{Year: 2025})
	if err != nil {
		t.Fatalf("BuildDashboard returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both customers without filter, got %d", len(all))
	}

	filtered, err := dashboard.BuildDashboard(DashboardFilter{
		Year: 2025, StartMonth: 9, EndMonth: 10, OnlyWithData: true,
	})
	if err != nil {
		t.Fatalf("BuildDashboard returned error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Active" {
		t.Fatalf("expected only Active customer, got %v", filtered)
	}

	// Диапазон вне данных исключает всех
	empty, err := dashboard.BuildDashboard(DashboardFilter{
		Year: 2025, StartMonth: 1, EndMonth: 3, OnlyWithData: true,
	})
	if err != nil {
		t.Fatalf("BuildDashboard returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no customers in January..March, got %v", empty)
	}
}

func TestBuildCustomerDashboard_UnknownCustomer(t *testing.T) {
	db, _, _ := newTestStack(t)

	dashboard := NewDashboardService(db, slog.Default())
	if _, err := dashboard.BuildCustomerDashboard("Ghost", DashboardFilter{Year: 2025}); err == nil {
		t.Fatal("expected error for unknown customer")
	}
}

func TestExportCSV_MatchesDashboardValues(t *testing.T) {
	db, _, sessionService := newTestStack(t)

	customer, _ := db.CreateCustomer("Acme", "North")
	recordRun(t, db, sessionService, customer.ID, "2025-10-08")

	dashboard := NewDashboardService(db, slog.Default())
	reports := NewReportService(dashboard, slog.Default())

	filter := DashboardFilter{Year: 2025}
	rows, err := dashboard.BuildDashboard(filter)
	if err != nil {
		t.Fatalf("BuildDashboard returned error: %v", err)
	}
	data, err := reports.ExportCSV(filter)
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}

	// Экспорт обязан содержать ровно те же токены, что и дашборд
	csvText := string(data)
	if !strings.Contains(csvText, "Acme,ALL,1") {
		t.Fatalf("expected customer row in CSV, got:\n%s", csvText)
	}
	if !strings.Contains(csvText, rows[0].Months[9]) {
		t.Fatalf("expected dashboard October token %q in CSV:\n%s", rows[0].Months[9], csvText)
	}

	lines := strings.Split(strings.TrimSpace(csvText), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row for a single-network customer, got %d lines", len(lines))
	}
}

func TestExportExcel_ProducesWorkbook(t *testing.T) {
	db, _, sessionService := newTestStack(t)

	customer, _ := db.CreateCustomer("Acme", "North")
	recordRun(t, db, sessionService, customer.ID, "2025-10-08")

	dashboard := NewDashboardService(db, slog.Default())
	reports := NewReportService(dashboard, slog.Default())

	data, err := reports.ExportExcel(DashboardFilter{Year: 2025})
	if err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty xlsx payload")
	}
	// xlsx это zip контейнер
	if data[0] != 'P' || data[1] != 'K' {
		t.Fatalf("expected zip magic in xlsx payload, got %x%x", data[0], data[1])
	}
}

func TestAuditService_RepairsDriftedCounters(t *testing.T) {
	db, _, sessionService := newTestStack(t)

	customer, _ := db.CreateCustomer("Acme", "North")
	recordRun(t, db, sessionService, customer.ID, "2025-10-08")

	if _, err := db.GetConnection().Exec(
		`UPDATE run_history SET total_runs = 42 WHERE customer_id = ?`, customer.ID,
	); err != nil {
		t.Fatalf("failed to corrupt counter: %v", err)
	}

	audit := NewAuditService(db, slog.Default())
	report, err := audit.AuditAll()
	if err != nil {
		t.Fatalf("AuditAll returned error: %v", err)
	}

	if report.Checked != 1 {
		t.Fatalf("expected 1 checked row, got %d", report.Checked)
	}
	if len(report.Corrections) != 1 {
		t.Fatalf("expected 1 correction, got %v", report.Corrections)
	}
	if report.Corrections[0].Stored != 42 || report.Corrections[0].Corrected != 1 {
		t.Fatalf("expected 42 -> 1 correction, got %+v", report.Corrections[0])
	}

	// Повторный проход чистый
	second, err := audit.AuditAll()
	if err != nil {
		t.Fatalf("second AuditAll returned error: %v", err)
	}
	if len(second.Corrections) != 0 {
		t.Fatalf("expected no corrections on clean pass, got %v", second.Corrections)
	}
}
