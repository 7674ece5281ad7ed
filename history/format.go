package history

// DisplayLayout короткий токен отображения: день всегда первый
const DisplayLayout = "02/01"

// FormatCell преобразует сырое значение ячейки в короткий токен отображения.
// Правила:
//   - пустые значения ("", "-", "None", "null") -> "-";
//   - статусные метки возвращаются без изменений, они никогда не переводятся;
//   - ISO дата -> "DD/MM" по реальному календарному месяцу даты,
//     а не по ключу, под которым она была сохранена;
//   - нераспознанное значение возвращается без изменений (данные не теряются),
//     второй результат сигнализирует вызывающему о необходимости логирования.
//
// Функция тотальна и никогда не паникует: дашборд и экспорт обязаны
// оставаться работоспособными поверх неидеальных исторических данных.
func FormatCell(raw string) (token string, malformed bool) {
	cell := ParseCell(raw)
	switch cell.Kind {
	case CellEmpty:
		return EmptyMark, false
	case CellSentinel:
		return string(cell.Sentinel), false
	case CellDate:
		return cell.Date.Format(DisplayLayout), false
	default:
		return raw, true
	}
}

// FormatArray применяет FormatCell ко всем слотам массива.
// Возвращает новый массив и список индексов нераспознанных значений
// для логирования на стороне вызывающего.
func FormatArray(arr MonthArray) (MonthArray, []int) {
	var out MonthArray
	var malformed []int
	for i, raw := range arr {
		token, bad := FormatCell(raw)
		out[i] = token
		if bad {
			malformed = append(malformed, i)
		}
	}
	return out, malformed
}

// clampMonth приводит номер месяца к диапазону 1..12
func clampMonth(month int) int {
	if month < 1 {
		return 1
	}
	if month > MonthsInYear {
		return MonthsInYear
	}
	return month
}

// ApplyMonthRangeFilter возвращает новый массив, в котором слоты вне
// диапазона [startMonth, endMonth] (1-базный, включительно) принудительно
// заменены на "-". Входной массив не изменяется: отфильтрованный экспорт
// не способен испортить живые данные дашборда.
func ApplyMonthRangeFilter(arr MonthArray, startMonth, endMonth int) MonthArray {
	startMonth = clampMonth(startMonth)
	endMonth = clampMonth(endMonth)

	out := arr
	for i := range out {
		month := i + 1
		if month < startMonth || month > endMonth {
			out[i] = EmptyMark
		}
	}
	return out
}

// CustomerHasDataInRange сообщает, есть ли в диапазоне [startMonth, endMonth]
// хотя бы один слот с содержательным значением (не "-" и не статусная метка).
// Используется для исключения заказчиков без данных при фильтрации по датам.
func CustomerHasDataInRange(arr MonthArray, startMonth, endMonth int) bool {
	startMonth = clampMonth(startMonth)
	endMonth = clampMonth(endMonth)

	for month := startMonth; month <= endMonth; month++ {
		raw := arr[month-1]
		if raw == EmptyMark || IsSentinelValue(raw) {
			continue
		}
		return true
	}
	return false
}
