package history

import (
	"fmt"
	"sort"
)

// MonthsInYear длина нормализованного массива (январь..декабрь)
const MonthsInYear = 12

// MonthArray нормализованный массив из 12 слотов, индекс 0..11 = январь..декабрь.
// Производное значение: строится заново на каждое чтение и никогда
// не сохраняется, чтобы исключить устаревание.
type MonthArray [MonthsInYear]string

// NewMonthArray возвращает массив, заполненный маркером пустоты
func NewMonthArray() MonthArray {
	var arr MonthArray
	for i := range arr {
		arr[i] = EmptyMark
	}
	return arr
}

// StoreRow строка MonthlyHistoryStore для одной пары (заказчик, сеть)
type StoreRow struct {
	CustomerID int
	Network    string
	TotalRuns  int
	// Months разреженная карта "YYYY-MM" -> значение ячейки
	Months map[string]string
}

// monthKeyFor ключ месяца для слота массива в заданном году
func monthKeyFor(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// BuildNetworkArray строит массив одной сети за заданный год.
// Чистая проекция без слияния; длина результата всегда ровно 12,
// какой бы разреженной ни была карта.
func BuildNetworkArray(row StoreRow, year int) MonthArray {
	arr := NewMonthArray()
	for month := 1; month <= MonthsInYear; month++ {
		if v, ok := row.Months[monthKeyFor(year, month)]; ok {
			arr[month-1] = v
		}
	}
	return arr
}

// BuildCustomerArray строит объединенный массив заказчика по всем его сетям.
// Приоритет значения для каждого месяца:
//  1. самая поздняя конкретная дата среди всех сетей;
//  2. иначе первая статусная метка в стабильном порядке (сети отсортированы по имени);
//  3. иначе "-".
// Объединенный вид показывает прогресс, если в этом месяце отработала
// хотя бы одна сеть, предпочитая реальный запуск устаревшей метке.
func BuildCustomerArray(rows []StoreRow, year int) MonthArray {
	// Стабильный порядок обхода: "первая встреченная" метка обязана
	// быть воспроизводимой
	sorted := make([]StoreRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Network < sorted[j].Network
	})

	arr := NewMonthArray()
	for month := 1; month <= MonthsInYear; month++ {
		key := monthKeyFor(year, month)

		bestDate := ""
		firstSentinel := ""
		for _, row := range sorted {
			raw, ok := row.Months[key]
			if !ok {
				continue
			}
			switch cell := ParseCell(raw); cell.Kind {
			case CellDate:
				// ISO даты сравниваются лексикографически
				if raw > bestDate {
					bestDate = raw
				}
			case CellSentinel:
				if firstSentinel == "" {
					firstSentinel = raw
				}
			}
		}

		switch {
		case bestDate != "":
			arr[month-1] = bestDate
		case firstSentinel != "":
			arr[month-1] = firstSentinel
		}
	}
	return arr
}

// TotalRunsForCustomer суммирует авторитетные счетчики всех сетей заказчика.
// Счетчик никогда не пересчитывается от числа заполненных слотов массива:
// месяц с пятью запусками хранит одну ячейку, но пять событий.
func TotalRunsForCustomer(rows []StoreRow) int {
	total := 0
	for _, row := range rows {
		total += row.TotalRuns
	}
	return total
}
