package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hctracker/server/errors"
	"hctracker/server/middleware"
	"hctracker/server/services"
)

// UploadHandler обработчик загрузки файлов отчетов Health Check
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler создает новый обработчик загрузки отчетов
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// HandleUploadReport обработчик загрузки отчета
// @Summary Загрузить файл отчета
// @Description Принимает отчет HC_<заказчик>_<сеть>_<ГГГГММДД>.(xlsx|csv), создает
// @Description сессию обработки и при успешном разборе записывает запуск датой из имени файла.
// @Description Нечитаемый отчет терминально проваливает сессию, история не изменяется.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл отчета"
// @Success 200 {object} services.UploadResult "Файл и сессия обработки"
// @Failure 400 {object} ErrorResponse "Имя файла не соответствует соглашению"
// @Failure 404 {object} ErrorResponse "Пара заказчик-сеть не зарегистрирована"
// @Failure 429 {object} ErrorResponse "Превышен лимит загрузок"
// @Router /api/uploads [post]
func (h *UploadHandler) HandleUploadReport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("в запросе отсутствует файл отчета", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("не удалось открыть загруженный файл", err))
		return
	}
	defer file.Close()

	result, err := h.uploadService.HandleUpload(fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	SendJSONResponse(c, http.StatusOK, result)
}
