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

// SessionHandler обработчик сессий обработки Health Check
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// SessionCreateRequest тело запроса создания сессии
type SessionCreateRequest struct {
	CustomerID int    `json:"customer_id" binding:"required"`
	FileID     string `json:"file_id"`
}

// SessionCompleteRequest тело запроса завершения сессии
type SessionCompleteRequest struct {
	CompletedAt string `json:"completed_at"`
}

// SessionFailRequest тело запроса провала сессии
type SessionFailRequest struct {
	ErrorMessage string `json:"error_message"`
}

// SessionListResponse структура ответа для списка сессий
type SessionListResponse struct {
	Sessions []database.Session `json:"sessions"`
	Total    int                `json:"total"`
}

// HandleListSessions обработчик списка сессий
// @Summary Получить список сессий
// @Description Возвращает сессии обработки, опционально по заказчику и статусу
// @Tags sessions
// @Produce json
// @Param customer_id query int false "Фильтр по заказчику"
// @Param status query string false "Фильтр по статусу (pending, processing, completed, failed)"
// @Param limit query int false "Максимум строк в ответе"
// @Success 200 {object} SessionListResponse "Список сессий"
// @Failure 400 {object} ErrorResponse "Ошибка валидации"
// @Router /api/sessions [get]
func (h *SessionHandler) HandleListSessions(c *gin.Context) {
	customerID := 0
	if raw := c.Query("customer_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.AbortWithError(c, apperrors.NewValidationError("некорректный параметр customer_id", err))
			return
		}
		customerID = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.AbortWithError(c, apperrors.NewValidationError("некорректный параметр limit", err))
			return
		}
		limit = parsed
	}

	sessions, err := h.sessionService.ListSessions(customerID, c.Query("status"), limit)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// HandleGetSession обработчик одной сессии
// @Summary Получить сессию
// @Description Возвращает сессию обработки по UUID
// @Tags sessions
// @Produce json
// @Param id path string true "UUID сессии"
// @Success 200 {object} database.Session "Сессия"
// @Failure 404 {object} ErrorResponse "Сессия не найдена"
// @Router /api/sessions/{id} [get]
func (h *SessionHandler) HandleGetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, session)
}

// HandleCreateSession обработчик создания сессии
// @Summary Создать сессию обработки
// @Description Создает сессию в статусе pending для ручного сценария без загрузки файла
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body SessionCreateRequest true "Данные сессии"
// @Success 201 {object} database.Session "Созданная сессия"
// @Failure 400 {object} ErrorResponse "Ошибка валидации"
// @Failure 404 {object} ErrorResponse "Заказчик не найден"
// @Router /api/sessions [post]
func (h *SessionHandler) HandleCreateSession(c *gin.Context) {
	var req SessionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректное тело запроса", err))
		return
	}

	session, err := h.sessionService.CreateSession(req.CustomerID, req.FileID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusCreated, session)
}

// HandleCompleteSession обработчик завершения сессии
// @Summary Завершить сессию
// @Description Помечает сессию завершенной и записывает запуск в историю заказчика.
// @Description Повторное завершение той же сессии идемпотентно и не создает второго запуска.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "UUID сессии"
// @Param event body SessionCompleteRequest true "Временная метка завершения"
// @Success 200 {object} database.Session "Завершенная сессия"
// @Failure 400 {object} ErrorResponse "Отсутствует или нераспознаваема временная метка"
// @Failure 404 {object} ErrorResponse "Сессия не найдена"
// @Failure 409 {object} ErrorResponse "Сессия уже провалена"
// @Router /api/sessions/{id}/complete [post]
func (h *SessionHandler) HandleCompleteSession(c *gin.Context) {
	var req SessionCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректное тело запроса", err))
		return
	}

	session, err := h.sessionService.CompleteSession(c.Param("id"), req.CompletedAt)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, session)
}

// HandleFailSession обработчик провала сессии
// @Summary Провалить сессию
// @Description Помечает сессию проваленной; история заказчика не изменяется
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "UUID сессии"
// @Param reason body SessionFailRequest true "Причина провала"
// @Success 200 {object} database.Session "Проваленная сессия"
// @Failure 404 {object} ErrorResponse "Сессия не найдена"
// @Failure 409 {object} ErrorResponse "Сессия уже завершена"
// @Router /api/sessions/{id}/fail [post]
func (h *SessionHandler) HandleFailSession(c *gin.Context) {
	var req SessionFailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("некорректное тело запроса", err))
		return
	}

	session, err := h.sessionService.FailSession(c.Param("id"), req.ErrorMessage)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, session)
}
