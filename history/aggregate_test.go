package history

import (
	"testing"
)

func TestBuildNetworkArray_AlwaysTwelveSlots(t *testing.T) {
	cases := []map[string]string{
		{},
		{"2025-10": "2025-10-08"},
		{
			"2025-01": "2025-01-10", "2025-02": "2025-02-10", "2025-03": "2025-03-10",
			"2025-04": "2025-04-10", "2025-05": "2025-05-10", "2025-06": "2025-06-10",
			"2025-07": "2025-07-10", "2025-08": "2025-08-10", "2025-09": "2025-09-10",
			"2025-10": "2025-10-10", "2025-11": "2025-11-10", "2025-12": "2025-12-10",
		},
	}

	for i, months := range cases {
		arr := BuildNetworkArray(StoreRow{Months: months}, 2025)
		if len(arr) != MonthsInYear {
			t.Fatalf("case %d: expected 12 slots, got %d", i, len(arr))
		}
		for slot, v := range arr {
			if v == "" {
				t.Fatalf("case %d: slot %d is empty string instead of %q", i, slot, EmptyMark)
			}
		}
	}
}

func TestBuildNetworkArray_PlacesValuesByMonth(t *testing.T) {
	row := StoreRow{Months: map[string]string{
		"2025-10": "2025-10-08",
		"2025-06": string(SentinelNoReport),
		"2024-10": "2024-10-01", // другой год не попадает в массив
	}}

	arr := BuildNetworkArray(row, 2025)

	if arr[9] != "2025-10-08" {
		t.Fatalf("expected October slot to hold 2025-10-08, got %q", arr[9])
	}
	if arr[5] != string(SentinelNoReport) {
		t.Fatalf("expected June slot to hold sentinel, got %q", arr[5])
	}
	for _, slot := range []int{0, 1, 2, 3, 4, 6, 7, 8, 10, 11} {
		if arr[slot] != EmptyMark {
			t.Fatalf("expected slot %d to be empty, got %q", slot, arr[slot])
		}
	}
}

func TestBuildCustomerArray_DateBeatsSentinel(t *testing.T) {
	rows := []StoreRow{
		{Network: "A", Months: map[string]string{"2025-06": string(SentinelNotStarted)}},
		{Network: "B", Months: map[string]string{"2025-06": "2025-06-14"}},
	}

	arr := BuildCustomerArray(rows, 2025)

	if arr[5] != "2025-06-14" {
		t.Fatalf("expected concrete date to beat sentinel, got %q", arr[5])
	}

	token, malformed := FormatCell(arr[5])
	if malformed {
		t.Fatalf("unexpected malformed flag for %q", arr[5])
	}
	if token != "14/06" {
		t.Fatalf("expected day-first token 14/06, got %q", token)
	}
}

func TestBuildCustomerArray_LatestDateAcrossNetworks(t *testing.T) {
	rows := []StoreRow{
		{Network: "North", Months: map[string]string{"2025-03": "2025-03-05"}},
		{Network: "South", Months: map[string]string{"2025-03": "2025-03-20"}},
		{Network: "West", Months: map[string]string{"2025-03": "2025-03-11"}},
	}

	arr := BuildCustomerArray(rows, 2025)

	if arr[2] != "2025-03-20" {
		t.Fatalf("expected latest date across networks, got %q", arr[2])
	}
}

func TestBuildCustomerArray_FirstSentinelInStableOrder(t *testing.T) {
	// Входной порядок перемешан: результат обязан зависеть только
	// от сортировки по имени сети
	rows := []StoreRow{
		{Network: "Zeta", Months: map[string]string{"2025-08": string(SentinelNotRun)}},
		{Network: "Alpha", Months: map[string]string{"2025-08": string(SentinelNoReport)}},
	}

	first := BuildCustomerArray(rows, 2025)
	second := BuildCustomerArray([]StoreRow{rows[1], rows[0]}, 2025)

	if first[7] != string(SentinelNoReport) {
		t.Fatalf("expected sentinel from Alpha (first by name), got %q", first[7])
	}
	if first != second {
		t.Fatalf("merge is not deterministic: %v vs %v", first, second)
	}
}

func TestBuildCustomerArray_SingleRow(t *testing.T) {
	rows := []StoreRow{
		{Network: "North", Months: map[string]string{"2025-10": "2025-10-08"}},
	}

	arr := BuildCustomerArray(rows, 2025)

	if arr[9] != "2025-10-08" {
		t.Fatalf("expected October value, got %q", arr[9])
	}
}

func TestTotalRunsForCustomer_SumsAuthoritativeCounters(t *testing.T) {
	rows := []StoreRow{
		// У North два запуска в одном месяце: карта хранит одну ячейку,
		// но счетчик обязан отражать оба события
		{Network: "North", TotalRuns: 2, Months: map[string]string{"2025-10": "2025-10-25"}},
		{Network: "South", TotalRuns: 1, Months: map[string]string{"2025-09": "2025-09-01"}},
	}

	if got := TotalRunsForCustomer(rows); got != 3 {
		t.Fatalf("expected total 3, got %d", got)
	}
}
