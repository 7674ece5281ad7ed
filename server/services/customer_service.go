package services

import (
	"errors"
	"log/slog"
	"strings"

	"hctracker/database"
	apperrors "hctracker/server/errors"
)

// CustomerService сервис CRUD заказчиков
type CustomerService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewCustomerService создает новый сервис заказчиков
func NewCustomerService(db *database.DB, logger *slog.Logger) *CustomerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerService{db: db, logger: logger}
}

// validateCustomerInput проверяет поля заказчика.
// Подчеркивание зарезервировано соглашением об именах файлов отчетов.
func validateCustomerInput(name, networkName string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("имя заказчика не может быть пустым", nil)
	}
	if strings.Contains(name, "_") || strings.Contains(networkName, "_") {
		return apperrors.NewValidationError("подчеркивание в имени заказчика и сети недопустимо", nil)
	}
	return nil
}

// CreateCustomer создает заказчика вместе с пустой строкой истории
func (s *CustomerService) CreateCustomer(name, networkName string) (*database.Customer, error) {
	if err := validateCustomerInput(name, networkName); err != nil {
		return nil, err
	}

	customer, err := s.db.CreateCustomer(name, networkName)
	if err != nil {
		if errors.Is(err, database.ErrCustomerExists) {
			return nil, apperrors.NewConflictError("заказчик с такой парой (имя, сеть) уже существует", err)
		}
		return nil, apperrors.NewInternalError("не удалось создать заказчика", err)
	}

	s.logger.Info("customer created",
		"customer_id", customer.ID,
		"name", customer.Name,
		"network", customer.NetworkName,
	)
	return customer, nil
}

// GetCustomer возвращает заказчика по идентификатору
func (s *CustomerService) GetCustomer(id int) (*database.Customer, error) {
	customer, err := s.db.GetCustomer(id)
	if err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return nil, apperrors.NewNotFoundError("заказчик не найден", err)
		}
		return nil, apperrors.NewInternalError("не удалось прочитать заказчика", err)
	}
	if customer.Deleted {
		return nil, apperrors.NewNotFoundError("заказчик не найден", database.ErrCustomerNotFound)
	}
	return customer, nil
}

// ListCustomers возвращает всех неудаленных заказчиков
func (s *CustomerService) ListCustomers() ([]database.Customer, error) {
	customers, err := s.db.ListCustomers()
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось получить список заказчиков", err)
	}
	return customers, nil
}

// UpdateCustomer обновляет имя и сеть заказчика
func (s *CustomerService) UpdateCustomer(id int, name, networkName string) (*database.Customer, error) {
	if err := validateCustomerInput(name, networkName); err != nil {
		return nil, err
	}

	customer, err := s.db.UpdateCustomer(id, name, networkName)
	if err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return nil, apperrors.NewNotFoundError("заказчик не найден", err)
		}
		return nil, apperrors.NewInternalError("не удалось обновить заказчика", err)
	}
	return customer, nil
}

// DeleteCustomer помечает заказчика удаленным
func (s *CustomerService) DeleteCustomer(id int) error {
	if err := s.db.SoftDeleteCustomer(id); err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return apperrors.NewNotFoundError("заказчик не найден", err)
		}
		return apperrors.NewInternalError("не удалось удалить заказчика", err)
	}

	s.logger.Info("customer soft deleted", "customer_id", id)
	return nil
}
