package history

import (
	"testing"
)

func TestFormatCell_EmptyValues(t *testing.T) {
	for _, raw := range []string{"", "-", "None", "null"} {
		token, malformed := FormatCell(raw)
		if token != EmptyMark || malformed {
			t.Fatalf("expected %q -> %q, got %q (malformed=%v)", raw, EmptyMark, token, malformed)
		}
	}
}

func TestFormatCell_SentinelsPassThrough(t *testing.T) {
	for _, raw := range []string{"Not Started", "Not Run", "No Report"} {
		token, malformed := FormatCell(raw)
		if token != raw || malformed {
			t.Fatalf("sentinel %q must pass through unchanged, got %q (malformed=%v)", raw, token, malformed)
		}
	}
}

func TestFormatCell_DateUsesTrueCalendarMonth(t *testing.T) {
	// Дата могла быть сохранена под чужим ключом месяца при слиянии;
	// токен обязан отражать реальный месяц самой даты
	token, malformed := FormatCell("2025-10-09")
	if malformed {
		t.Fatal("unexpected malformed flag for a valid date")
	}
	if token != "09/10" {
		t.Fatalf("expected 09/10, got %q", token)
	}
}

func TestFormatCell_MalformedReturnedVerbatim(t *testing.T) {
	for _, raw := range []string{"2025-99-99", "run ok", "20251008"} {
		token, malformed := FormatCell(raw)
		if token != raw {
			t.Fatalf("malformed value %q must be returned verbatim, got %q", raw, token)
		}
		if !malformed {
			t.Fatalf("expected malformed flag for %q", raw)
		}
	}
}

func TestApplyMonthRangeFilter_PureAndRepeatable(t *testing.T) {
	arr := NewMonthArray()
	arr[8] = "2025-09-02"  // сентябрь
	arr[9] = "2025-10-08"  // октябрь
	arr[11] = "2025-12-30" // декабрь
	original := arr

	filtered := ApplyMonthRangeFilter(arr, 9, 10)

	if arr != original {
		t.Fatal("ApplyMonthRangeFilter must not mutate its input")
	}
	if filtered[8] != "2025-09-02" || filtered[9] != "2025-10-08" {
		t.Fatalf("September/October must survive the 9..10 filter: %v", filtered)
	}
	if filtered[11] != EmptyMark {
		t.Fatalf("December must be forced to %q, got %q", EmptyMark, filtered[11])
	}

	// Второй вызов с другим диапазоном на том же исходном массиве
	// дает независимый корректный результат
	other := ApplyMonthRangeFilter(arr, 12, 12)
	if other[11] != "2025-12-30" || other[8] != EmptyMark || other[9] != EmptyMark {
		t.Fatalf("unexpected result for 12..12 filter: %v", other)
	}
	if filtered[11] != EmptyMark {
		t.Fatal("earlier filter result must stay independent")
	}
}

func TestApplyMonthRangeFilter_ClampsOutOfRangeMonths(t *testing.T) {
	arr := NewMonthArray()
	arr[0] = "2025-01-15"
	arr[11] = "2025-12-01"

	filtered := ApplyMonthRangeFilter(arr, -3, 99)

	if filtered != arr {
		t.Fatalf("clamped full range must keep the array intact: %v", filtered)
	}
}

func TestCustomerHasDataInRange(t *testing.T) {
	arr := NewMonthArray()
	arr[5] = string(SentinelNotStarted)
	arr[9] = "2025-10-08"

	if !CustomerHasDataInRange(arr, 9, 10) {
		t.Fatal("expected data in October range")
	}
	if CustomerHasDataInRange(arr, 1, 5) {
		t.Fatal("expected no data before June")
	}
	// Статусная метка не считается содержательными данными
	if CustomerHasDataInRange(arr, 6, 6) {
		t.Fatal("sentinel alone must not count as data")
	}
}

func TestFormatArray_FlagsMalformedSlots(t *testing.T) {
	arr := NewMonthArray()
	arr[1] = "garbage"
	arr[9] = "2025-10-08"

	out, malformed := FormatArray(arr)

	if out[9] != "08/10" {
		t.Fatalf("expected formatted October token, got %q", out[9])
	}
	if out[1] != "garbage" {
		t.Fatalf("malformed slot must keep raw value, got %q", out[1])
	}
	if len(malformed) != 1 || malformed[0] != 1 {
		t.Fatalf("expected malformed index [1], got %v", malformed)
	}
}
