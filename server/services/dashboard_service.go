package services

import (
	"log/slog"
	"time"

	"hctracker/database"
	"hctracker/history"
	apperrors "hctracker/server/errors"
)

// DashboardService строит представление дашборда из истории запусков.
// Дашборд и экспорт обязаны получать одинаковые значения для одинакового
// состояния, поэтому этот сервис - единственное место построения строк:
// экспорт потребляет его вывод, а не собирает свой.
type DashboardService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewDashboardService создает новый сервис дашборда
func NewDashboardService(db *database.DB, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{db: db, logger: logger}
}

// DashboardFilter параметры выборки дашборда
type DashboardFilter struct {
	// Year год, месяцы которого раскладываются в 12 слотов;
	// 0 означает текущий год
	Year int
	// StartMonth, EndMonth диапазон месяцев 1..12 включительно;
	// 0 означает отсутствие фильтра
	StartMonth int
	EndMonth   int
	// OnlyWithData исключить заказчиков без содержательных данных в диапазоне
	OnlyWithData bool
}

// NetworkDashboardRow строка одной сети заказчика
type NetworkDashboardRow struct {
	CustomerID int      `json:"customer_id"`
	Network    string   `json:"network"`
	TotalRuns  int      `json:"total_runs"`
	Months     []string `json:"months"`
}

// CustomerDashboardRow объединенная строка заказчика по всем его сетям
type CustomerDashboardRow struct {
	Name      string                `json:"name"`
	TotalRuns int                   `json:"total_runs"`
	Months    []string              `json:"months"`
	Networks  []NetworkDashboardRow `json:"networks"`
}

// normalizeFilter подставляет значения по умолчанию
func normalizeFilter(filter DashboardFilter) DashboardFilter {
	if filter.Year == 0 {
		filter.Year = time.Now().Year()
	}
	if filter.StartMonth == 0 && filter.EndMonth == 0 {
		filter.StartMonth = 1
		filter.EndMonth = history.MonthsInYear
	}
	return filter
}

// buildRow строит один ряд дашборда по строкам истории заказчика.
// Возвращает nil, если фильтр OnlyWithData исключает заказчика.
func (s *DashboardService) buildRow(name string, stores []history.StoreRow, filter DashboardFilter) *CustomerDashboardRow {
	merged := history.BuildCustomerArray(stores, filter.Year)
	merged = history.ApplyMonthRangeFilter(merged, filter.StartMonth, filter.EndMonth)

	if filter.OnlyWithData && !history.CustomerHasDataInRange(merged, filter.StartMonth, filter.EndMonth) {
		return nil
	}

	mergedTokens, malformed := history.FormatArray(merged)
	s.logMalformed(name, "", malformed, merged)

	row := &CustomerDashboardRow{
		Name:      name,
		TotalRuns: history.TotalRunsForCustomer(stores),
		Months:    mergedTokens[:],
	}

	for _, store := range stores {
		arr := history.BuildNetworkArray(store, filter.Year)
		arr = history.ApplyMonthRangeFilter(arr, filter.StartMonth, filter.EndMonth)
		tokens, badSlots := history.FormatArray(arr)
		s.logMalformed(name, store.Network, badSlots, arr)

		row.Networks = append(row.Networks, NetworkDashboardRow{
			CustomerID: store.CustomerID,
			Network:    store.Network,
			TotalRuns:  store.TotalRuns,
			Months:     tokens[:],
		})
	}

	return row
}

// logMalformed поднимает нераспознанные значения ячеек оператору.
// Ошибка не фатальна: значение уже возвращено как есть, дашборд
// остается работоспособным поверх неидеальных исторических данных.
func (s *DashboardService) logMalformed(name, network string, slots []int, arr history.MonthArray) {
	for _, slot := range slots {
		s.logger.Warn("malformed history cell value",
			"customer", name,
			"network", network,
			"month", slot+1,
			"value", arr[slot],
		)
	}
}

// BuildDashboard строит строки дашборда для всех заказчиков
func (s *DashboardService) BuildDashboard(filter DashboardFilter) ([]CustomerDashboardRow, error) {
	filter = normalizeFilter(filter)

	names, err := s.db.CustomerNames()
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось получить список заказчиков", err)
	}

	rows := make([]CustomerDashboardRow, 0, len(names))
	for _, name := range names {
		stores, err := s.db.ListHistoryRowsByName(name)
		if err != nil {
			return nil, apperrors.NewInternalError("не удалось прочитать историю запусков", err)
		}
		if len(stores) == 0 {
			continue
		}
		if row := s.buildRow(name, stores, filter); row != nil {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

// BuildCustomerDashboard строит один ряд дашборда для заказчика по имени
func (s *DashboardService) BuildCustomerDashboard(name string, filter DashboardFilter) (*CustomerDashboardRow, error) {
	filter = normalizeFilter(filter)

	stores, err := s.db.ListHistoryRowsByName(name)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось прочитать историю запусков", err)
	}
	if len(stores) == 0 {
		return nil, apperrors.NewNotFoundError("заказчик не найден", nil)
	}

	// Одиночный просмотр не скрывает заказчика без данных
	filter.OnlyWithData = false
	return s.buildRow(name, stores, filter), nil
}
