// Package history реализует ядро учета истории запусков Health Check:
// помесячную сверку событий завершения, агрегацию по сетям заказчика
// и форматирование значений для дашборда и экспорта.
package history

import (
	"time"
)

// Sentinel статусная метка, занимающая месячную ячейку вместо даты
type Sentinel string

const (
	SentinelNotStarted Sentinel = "Not Started"
	SentinelNotRun     Sentinel = "Not Run"
	SentinelNoReport   Sentinel = "No Report"
)

// EmptyMark маркер пустой ячейки в нормализованном массиве
const EmptyMark = "-"

// CellKind вид значения месячной ячейки
type CellKind int

const (
	// CellEmpty ячейка отсутствует или содержит пустое значение
	CellEmpty CellKind = iota
	// CellSentinel ячейка содержит одну из трех статусных меток
	CellSentinel
	// CellDate ячейка содержит конкретную дату завершения (ISO YYYY-MM-DD)
	CellDate
	// CellMalformed ячейка содержит нераспознанное значение (исторические данные)
	CellMalformed
)

// Cell размеченный вариант значения месячной ячейки.
// Потребители сверяются с Kind вместо повторной эвристики по строкам.
type Cell struct {
	Kind     CellKind
	Sentinel Sentinel
	Date     time.Time
	// Raw исходная строка; для CellMalformed возвращается без изменений,
	// чтобы не терять исторические данные
	Raw string
}

// DateLayout формат хранения конкретной даты в месячной ячейке
const DateLayout = "2006-01-02"

// MonthKeyLayout формат ключа месяца в monthly_history
const MonthKeyLayout = "2006-01"

// emptyValues значения, трактуемые как отсутствие данных.
// Набор унаследован от исторических выгрузок, где пустота
// кодировалась по-разному.
var emptyValues = map[string]struct{}{
	"":     {},
	"-":    {},
	"None": {},
	"null": {},
}

// sentinels допустимые статусные метки
var sentinels = map[string]Sentinel{
	string(SentinelNotStarted): SentinelNotStarted,
	string(SentinelNotRun):     SentinelNotRun,
	string(SentinelNoReport):   SentinelNoReport,
}

// ParseCell разбирает сырое строковое значение ячейки в размеченный вариант.
// Функция тотальна: нераспознанное значение становится CellMalformed,
// а не ошибкой, так как исторические данные обязаны оставаться отображаемыми.
func ParseCell(raw string) Cell {
	if _, ok := emptyValues[raw]; ok {
		return Cell{Kind: CellEmpty, Raw: raw}
	}

	if s, ok := sentinels[raw]; ok {
		return Cell{Kind: CellSentinel, Sentinel: s, Raw: raw}
	}

	if d, err := time.Parse(DateLayout, raw); err == nil {
		return Cell{Kind: CellDate, Date: d, Raw: raw}
	}

	return Cell{Kind: CellMalformed, Raw: raw}
}

// IsSentinelValue сообщает, является ли строка одной из статусных меток
func IsSentinelValue(raw string) bool {
	_, ok := sentinels[raw]
	return ok
}

// MonthKey возвращает ключ месяца ("YYYY-MM") для даты события
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// DateValue возвращает значение ячейки ("YYYY-MM-DD") для даты события
func DateValue(t time.Time) string {
	return t.Format(DateLayout)
}
