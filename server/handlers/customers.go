package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hctracker/database"
	apperrors "hctracker/server/errors"
	"hctracker/server/middleware"
	"hctracker/server/services"
)

// CustomerHandler обработчик для работы с заказчиками
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler создает новый обработчик заказчиков
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRequest тело запроса создания или изменения заказчика
type CustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	NetworkName string `json:"network_name"`
}

// CustomerListResponse структура ответа для списка заказчиков
type CustomerListResponse struct {
	Customers []database.Customer `json:"customers"`
	Total     int                 `json:"total"`
}

// HandleListCustomers обработчик списка заказчиков
// @Summary Получить список заказчиков
// @Description Возвращает всех незаархивированных заказчиков с их сетями
// @Tags customers
// @Produce json
// @Success 200 {object} CustomerListResponse "Список заказчиков"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/customers [get]
func (h *CustomerHandler) HandleListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers()
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, CustomerListResponse{
		Customers: customers,
		Total:     len(customers),
	})
}

// HandleGetCustomer обработчик одного заказчика
// @Summary Получить заказчика
// @Description Возвращает заказчика по идентификатору
// @Tags customers
// @Produce json
// @Param id path int true "ID заказчика"
// @Success 200 {object} database.Customer "Заказчик"
// @Failure 404 {object} ErrorResponse "Заказчик не найден"
// @Router /api/customers/{id} [get]
func (h *CustomerHandler) HandleGetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректный идентификатор заказчика", err))
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, customer)
}

// HandleCreateCustomer обработчик создания заказчика
// @Summary Создать заказчика
// @Description Регистрирует пару (заказчик, сеть) и пустую строку истории
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body CustomerRequest true "Данные заказчика"
// @Success 201 {object} database.Customer "Созданный заказчик"
// @Failure 400 {object} ErrorResponse "Ошибка валидации"
// @Failure 409 {object} ErrorResponse "Пара заказчик-сеть уже существует"
// @Router /api/customers [post]
func (h *CustomerHandler) HandleCreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректное тело запроса", err))
		return
	}

	customer, err := h.customerService.CreateCustomer(req.Name, req.NetworkName)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusCreated, customer)
}

// HandleUpdateCustomer обработчик изменения заказчика
// @Summary Изменить заказчика
// @Description Меняет имя или сеть заказчика, история запусков сохраняется
// @Tags customers
// @Accept json
// @Produce json
// @Param id path int true "ID заказчика"
// @Param customer body CustomerRequest true "Новые данные заказчика"
// @Success 200 {object} database.Customer "Обновленный заказчик"
// @Failure 400 {object} ErrorResponse "Ошибка валидации"
// @Failure 404 {object} ErrorResponse "Заказчик не найден"
// @Failure 409 {object} ErrorResponse "Пара заказчик-сеть уже существует"
// @Router /api/customers/{id} [put]
func (h *CustomerHandler) HandleUpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректный идентификатор заказчика", err))
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректное тело запроса", err))
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, req.Name, req.NetworkName)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, customer)
}

// HandleDeleteCustomer обработчик архивирования заказчика
// @Summary Архивировать заказчика
// @Description Помечает заказчика удаленным; история и сессии остаются в базе
// @Tags customers
// @Produce json
// @Param id path int true "ID заказчика"
// @Success 200 {object} map[string]interface{} "Результат архивирования"
// @Failure 404 {object} ErrorResponse "Заказчик не найден"
// @Router /api/customers/{id} [delete]
func (h *CustomerHandler) HandleDeleteCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректный идентификатор заказчика", err))
		return
	}

	if err := h.customerService.DeleteCustomer(id); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"deleted": true,
		"id":      id,
	})
}
