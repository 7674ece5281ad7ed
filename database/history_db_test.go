package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"hctracker/history"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCustomer(t *testing.T, db *DB, name, network string) *Customer {
	t.Helper()
	c, err := db.CreateCustomer(name, network)
	if err != nil {
		t.Fatalf("failed to create customer %s/%s: %v", name, network, err)
	}
	return c
}

// completeNewSession создает сессию и сразу завершает ее заданной датой,
// затем прогоняет сверку
func completeNewSession(t *testing.T, db *DB, customerID int, date string) {
	t.Helper()
	id := uuid.New().String()
	if _, err := db.CreateSession(id, customerID, ""); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	transitioned, err := db.MarkSessionCompleted(id, date)
	if err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}
	if !transitioned {
		t.Fatal("expected first completion to transition the session")
	}

	eventDate, err := time.Parse(history.DateLayout, date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	if _, err := db.ReconcileCompletion(customerID, eventDate); err != nil {
		t.Fatalf("failed to reconcile completion: %v", err)
	}
}

func TestCreateCustomer_CreatesEmptyHistoryRow(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")

	row, err := db.GetHistoryRow(c.ID)
	if err != nil {
		t.Fatalf("expected history row to exist: %v", err)
	}
	if row.TotalRuns != 0 {
		t.Fatalf("expected total_runs=0, got %d", row.TotalRuns)
	}
	if len(row.Months) != 0 {
		t.Fatalf("expected empty monthly_history, got %v", row.Months)
	}
}

func TestCreateCustomer_UniquenessAmongNonDeleted(t *testing.T) {
	db := newTestDB(t)
	createTestCustomer(t, db, "Acme", "North")

	if _, err := db.CreateCustomer("Acme", "North"); err != ErrCustomerExists {
		t.Fatalf("expected ErrCustomerExists, got %v", err)
	}

	// Та же пара допустима после мягкого удаления прежней строки
	c, err := db.FindCustomer("Acme", "North")
	if err != nil {
		t.Fatalf("failed to find customer: %v", err)
	}
	if err := db.SoftDeleteCustomer(c.ID); err != nil {
		t.Fatalf("failed to soft delete: %v", err)
	}
	if _, err := db.CreateCustomer("Acme", "North"); err != nil {
		t.Fatalf("expected recreation after soft delete, got %v", err)
	}
}

func TestReconcileCompletion_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")

	completeNewSession(t, db, c.ID, "2025-10-08")

	row, err := db.GetHistoryRow(c.ID)
	if err != nil {
		t.Fatalf("failed to get history row: %v", err)
	}
	if row.TotalRuns != 1 {
		t.Fatalf("expected total_runs=1, got %d", row.TotalRuns)
	}
	if got := row.Months["2025-10"]; got != "2025-10-08" {
		t.Fatalf("expected monthly_history[2025-10]=2025-10-08, got %q", got)
	}
	if len(row.Months) != 1 {
		t.Fatalf("expected a single month entry, got %v", row.Months)
	}

	arr := history.BuildNetworkArray(history.StoreRow{
		Network:   c.NetworkName,
		TotalRuns: row.TotalRuns,
		Months:    row.Months,
	}, 2025)
	formatted, malformed := history.FormatArray(arr)
	if len(malformed) != 0 {
		t.Fatalf("unexpected malformed slots: %v", malformed)
	}
	if formatted[9] != "08/10" {
		t.Fatalf("expected October token 08/10, got %q", formatted[9])
	}
	for slot, v := range formatted {
		if slot == 9 {
			continue
		}
		if v != history.EmptyMark {
			t.Fatalf("expected slot %d to be %q, got %q", slot, history.EmptyMark, v)
		}
	}
}

func TestReconcileCompletion_CounterIndependentFromSparseMap(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")

	// Два запуска в одном месяце: карта хранит одну ячейку с поздней датой,
	// счетчик обязан отражать оба события
	completeNewSession(t, db, c.ID, "2025-10-03")
	completeNewSession(t, db, c.ID, "2025-10-25")

	row, err := db.GetHistoryRow(c.ID)
	if err != nil {
		t.Fatalf("failed to get history row: %v", err)
	}
	if got := row.Months["2025-10"]; got != "2025-10-25" {
		t.Fatalf("expected latest date 2025-10-25, got %q", got)
	}
	if len(row.Months) != 1 {
		t.Fatalf("expected one month entry, got %v", row.Months)
	}
	if row.TotalRuns != 2 {
		t.Fatalf("expected total_runs=2, got %d", row.TotalRuns)
	}
}

func TestReconcileCompletion_ReplayedEventDoesNotDoubleCount(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")

	id := uuid.New().String()
	if _, err := db.CreateSession(id, c.ID, ""); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if _, err := db.MarkSessionCompleted(id, "2025-10-08"); err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}

	eventDate, _ := time.Parse(history.DateLayout, "2025-10-08")

	// Повтор завершения той же сессии: переход не происходит,
	// сверка повторяется без последствий
	if _, err := db.ReconcileCompletion(c.ID, eventDate); err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	transitioned, err := db.MarkSessionCompleted(id, "2025-10-08")
	if err != nil {
		t.Fatalf("replayed completion returned error: %v", err)
	}
	if transitioned {
		t.Fatal("replayed completion must not transition the session again")
	}
	if _, err := db.ReconcileCompletion(c.ID, eventDate); err != nil {
		t.Fatalf("replayed reconcile failed: %v", err)
	}

	row, err := db.GetHistoryRow(c.ID)
	if err != nil {
		t.Fatalf("failed to get history row: %v", err)
	}
	if row.TotalRuns != 1 {
		t.Fatalf("expected total_runs=1 after replay, got %d", row.TotalRuns)
	}
	if len(row.Months) != 1 {
		t.Fatalf("expected one month entry after replay, got %v", row.Months)
	}
}

func TestReconcileCompletion_ReportsCounterDrift(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")

	// Имитируем дрейф: счетчик испорчен мимо журнала сессий
	if _, err := db.GetConnection().Exec(
		`UPDATE run_history SET total_runs = 7 WHERE customer_id = ?`, c.ID,
	); err != nil {
		t.Fatalf("failed to corrupt counter: %v", err)
	}

	id := uuid.New().String()
	if _, err := db.CreateSession(id, c.ID, ""); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if _, err := db.MarkSessionCompleted(id, "2025-10-08"); err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}

	eventDate, _ := time.Parse(history.DateLayout, "2025-10-08")
	result, err := db.ReconcileCompletion(c.ID, eventDate)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if !result.CounterDrifted {
		t.Fatal("expected drift to be reported")
	}
	if result.PrevTotal != 7 || result.TotalRuns != 1 {
		t.Fatalf("expected 7 -> 1 correction, got %d -> %d", result.PrevTotal, result.TotalRuns)
	}

	row, _ := db.GetHistoryRow(c.ID)
	if row.TotalRuns != 1 {
		t.Fatalf("expected authoritative counter to win, got %d", row.TotalRuns)
	}
}

func TestRecountTotalRuns_RepairsDrift(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")
	completeNewSession(t, db, c.ID, "2025-09-01")

	if _, err := db.GetConnection().Exec(
		`UPDATE run_history SET total_runs = 99 WHERE customer_id = ?`, c.ID,
	); err != nil {
		t.Fatalf("failed to corrupt counter: %v", err)
	}

	prev, current, err := db.RecountTotalRuns(c.ID)
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if prev != 99 || current != 1 {
		t.Fatalf("expected 99 -> 1, got %d -> %d", prev, current)
	}
}

func TestSetMonthSentinel_DoesNotOverwriteDate(t *testing.T) {
	db := newTestDB(t)
	c := createTestCustomer(t, db, "Acme", "North")
	completeNewSession(t, db, c.ID, "2025-10-08")

	if err := db.SetMonthSentinel(c.ID, "2025-10", history.SentinelNoReport); err == nil {
		t.Fatal("expected sentinel write over a concrete date to be rejected")
	}
	if err := db.SetMonthSentinel(c.ID, "2025-11", history.SentinelNotRun); err != nil {
		t.Fatalf("failed to set sentinel on empty month: %v", err)
	}

	row, _ := db.GetHistoryRow(c.ID)
	if row.Months["2025-11"] != string(history.SentinelNotRun) {
		t.Fatalf("expected sentinel in November, got %q", row.Months["2025-11"])
	}
}
