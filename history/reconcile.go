package history

import (
	"fmt"
	"time"
)

// InvalidEventError ошибка события завершения с отсутствующей или
// нераспознаваемой временной меткой. Событие отклоняется на записи,
// временная метка никогда не подменяется текущим временем.
type InvalidEventError struct {
	Raw string
	Err error
}

// Error реализует интерфейс error
func (e *InvalidEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("некорректное событие завершения %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("некорректное событие завершения %q", e.Raw)
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *InvalidEventError) Unwrap() error {
	return e.Err
}

// ParseEventDate разбирает временную метку события завершения.
// Принимает ISO дату или ISO дату со временем; пустое значение отклоняется.
func ParseEventDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &InvalidEventError{Raw: raw}
	}

	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &InvalidEventError{Raw: raw}
}

// ApplyCompletion применяет событие завершения к карте monthly_history.
// Идемпотентный upsert с политикой "поздняя дата побеждает" в пределах месяца:
// запись заменяется, если ячейка месяца пуста, содержит статусную метку
// или дату строго раньше даты события. Повтор того же события или более
// раннее событие никогда не откатывают сохраненное значение.
//
// Счетчик total_runs здесь не трогается: он пересчитывается от
// авторитетного журнала событий (см. сервис сверки), а не от карты,
// которая хранит максимум одну запись на месяц.
func ApplyCompletion(months map[string]string, eventDate time.Time) bool {
	key := MonthKey(eventDate)
	value := DateValue(eventDate)

	existing, ok := months[key]
	if !ok {
		months[key] = value
		return true
	}

	cell := ParseCell(existing)
	switch cell.Kind {
	case CellDate:
		// ISO даты сравниваются лексикографически
		if existing < value {
			months[key] = value
			return true
		}
		return false
	default:
		// Пустые, статусные и нераспознанные значения вытесняются конкретной датой
		months[key] = value
		return existing != value
	}
}
