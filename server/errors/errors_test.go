package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_UnwrapChain(t *testing.T) {
	inner := errors.New("db is locked")
	appErr := NewInternalError("не удалось сохранить историю", inner)

	if !errors.Is(appErr, inner) {
		t.Fatal("expected errors.Is to reach the inner error")
	}
	if appErr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", appErr.StatusCode())
	}
	// Пользователь не видит деталей внутренней ошибки
	if appErr.UserMessage() != "Внутренняя ошибка сервера" {
		t.Fatalf("unexpected user message: %q", appErr.UserMessage())
	}
}

func TestNewInvalidEventError_IsBadRequest(t *testing.T) {
	appErr := NewInvalidEventError("not-a-date", nil)

	if appErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", appErr.StatusCode())
	}
}

func TestWrapError_KeepsExistingAppError(t *testing.T) {
	original := NewValidationError("пустое имя заказчика", nil)

	wrapped := WrapError(original, "ignored")

	if wrapped != original {
		t.Fatal("expected WrapError to return the original AppError")
	}
	if wrapped.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", wrapped.StatusCode())
	}
}

func TestWrapError_WrapsPlainError(t *testing.T) {
	wrapped := WrapError(errors.New("boom"), "операция не удалась")

	if wrapped.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", wrapped.StatusCode())
	}
}

func TestErrorMetricsCollector_RecordsAndLimits(t *testing.T) {
	collector := NewErrorMetricsCollector()

	for i := 0; i < 150; i++ {
		collector.RecordError(NewValidationError("bad input", nil), "/api/uploads", "req-1")
	}

	metrics := collector.GetMetrics()
	if metrics["total_errors"].(int64) != 150 {
		t.Fatalf("expected 150 total errors, got %v", metrics["total_errors"])
	}

	last := collector.GetLastErrors(0)
	if len(last) != 100 {
		t.Fatalf("expected last errors capped at 100, got %d", len(last))
	}

	collector.Reset()
	if collector.GetMetrics()["total_errors"].(int64) != 0 {
		t.Fatal("expected metrics to be reset")
	}
}
