package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"hctracker/database"
	"hctracker/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Port:                "0",
		DatabasePath:        db.Path(),
		UploadsDir:          t.TempDir(),
		LogLevel:            "ERROR",
		UploadRatePerSecond: 100,
		UploadBurst:         100,
		MaxUploadSizeBytes:  1 << 20,
	}

	return NewServer(db, cfg, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", resp["status"])
	}
}

func TestCustomerLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/customers", map[string]string{
		"name":         "Acme",
		"network_name": "North",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created database.Customer
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode customer: %v", err)
	}

	// Повторное создание той же пары - конфликт
	rec = doJSON(t, srv, http.MethodPost, "/api/customers", map[string]string{
		"name":         "Acme",
		"network_name": "North",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate pair, got %d", rec.Code)
	}

	// Имя с подчеркиванием отклоняется
	rec = doJSON(t, srv, http.MethodPost, "/api/customers", map[string]string{
		"name": "Acme_Corp",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for underscore in name, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/customers/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/customers/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/customers/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSessionCompletionFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/customers", map[string]string{
		"name":         "Acme",
		"network_name": "North",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var customer database.Customer
	if err := json.Unmarshal(rec.Body.Bytes(), &customer); err != nil {
		t.Fatalf("failed to decode customer: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]interface{}{
		"customer_id": customer.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var session database.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}

	// Завершение без временной метки отклоняется
	rec = doJSON(t, srv, http.MethodPost, "/api/sessions/"+session.ID+"/complete", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing timestamp, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/sessions/"+session.ID+"/complete", map[string]string{
		"completed_at": "2025-10-08",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Повтор идемпотентен
	rec = doJSON(t, srv, http.MethodPost, "/api/sessions/"+session.ID+"/complete", map[string]string{
		"completed_at": "2025-11-20",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d: %s", rec.Code, rec.Body.String())
	}

	// Дашборд видит ровно один запуск октябрьской датой
	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard?year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dashboard struct {
		Customers []struct {
			Name      string   `json:"name"`
			TotalRuns int      `json:"total_runs"`
			Months    []string `json:"months"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dashboard); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	if len(dashboard.Customers) != 1 {
		t.Fatalf("expected one dashboard row, got %d", len(dashboard.Customers))
	}
	row := dashboard.Customers[0]
	if row.TotalRuns != 1 {
		t.Fatalf("expected total runs 1, got %d", row.TotalRuns)
	}
	if row.Months[9] != "08/10" {
		t.Fatalf("expected October token 08/10, got %q", row.Months[9])
	}
}

func TestUploadEndpointOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/customers", map[string]string{
		"name":         "Acme",
		"network_name": "North",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "HC_Acme_North_20251008.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("Check;Status\nCPU load;OK\n")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Session *database.Session `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode upload result: %v", err)
	}
	if result.Session == nil || result.Session.Status != database.SessionStatusCompleted {
		t.Fatalf("expected completed session, got %+v", result.Session)
	}
}

func TestExportEndpointsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/export/tracker.csv?year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if disposition := rec.Header().Get("Content-Disposition"); disposition == "" {
		t.Fatal("expected Content-Disposition header on CSV export")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/export/tracker.xlsx?year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Некорректный месяц отклоняется одинаково для дашборда и экспорта
	rec = doJSON(t, srv, http.MethodGet, "/api/export/tracker.csv?start_month=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for month out of range, got %d", rec.Code)
	}
}

func TestGracefulShutdownWithoutStart(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown of a non-started server must be a no-op, got %v", err)
	}
}
