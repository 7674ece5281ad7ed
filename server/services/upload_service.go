package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"hctracker/database"
	"hctracker/history"
	"hctracker/importer"
	apperrors "hctracker/server/errors"
)

// UploadService сервис загрузки и обработки файлов отчетов
type UploadService struct {
	db             *database.DB
	sessionService *SessionService
	uploadsDir     string
	maxSizeBytes   int64
	logger         *slog.Logger
}

// NewUploadService создает новый сервис загрузки отчетов
func NewUploadService(
	db *database.DB,
	sessionService *SessionService,
	uploadsDir string,
	maxSizeBytes int64,
	logger *slog.Logger,
) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		db:             db,
		sessionService: sessionService,
		uploadsDir:     uploadsDir,
		maxSizeBytes:   maxSizeBytes,
		logger:         logger,
	}
}

// UploadResult результат загрузки и обработки отчета
type UploadResult struct {
	File    *database.ReportFile `json:"file"`
	Session *database.Session    `json:"session"`
}

// HandleUpload принимает файл отчета: проверяет имя по соглашению,
// сохраняет файл, создает сессию обработки, разбирает содержимое
// и завершает сессию датой отчета из имени файла.
// Пара (заказчик, сеть) из имени файла обязана существовать заранее.
func (s *UploadService) HandleUpload(originalName string, size int64, reader io.Reader) (*UploadResult, error) {
	if s.maxSizeBytes > 0 && size > s.maxSizeBytes {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("файл превышает предельный размер %d байт", s.maxSizeBytes), nil)
	}

	name, err := importer.ParseReportFilename(originalName)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	customer, err := s.db.FindCustomer(name.Customer, name.Network)
	if err != nil {
		if errors.Is(err, database.ErrCustomerNotFound) {
			return nil, apperrors.NewNotFoundError(
				fmt.Sprintf("заказчик %q с сетью %q не зарегистрирован", name.Customer, name.Network), err)
		}
		return nil, apperrors.NewInternalError("не удалось найти заказчика", err)
	}

	storedPath, written, err := s.storeFile(originalName, reader)
	if err != nil {
		return nil, err
	}

	fileRecord := database.ReportFile{
		ID:           uuid.New().String(),
		CustomerID:   customer.ID,
		OriginalName: filepath.Base(originalName),
		StoredPath:   storedPath,
		SizeBytes:    written,
	}
	if err := s.db.SaveReportFile(fileRecord); err != nil {
		return nil, apperrors.NewInternalError("не удалось сохранить запись о файле", err)
	}

	session, err := s.sessionService.CreateSession(customer.ID, fileRecord.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessionService.StartProcessing(session.ID); err != nil {
		return nil, err
	}

	// Разбор содержимого: нечитаемый отчет терминально проваливает сессию,
	// история заказчика при этом не изменяется
	summary, parseErr := importer.ParseReportFile(storedPath)
	if parseErr != nil {
		failed, failErr := s.sessionService.FailSession(session.ID, parseErr.Error())
		if failErr != nil {
			return nil, failErr
		}
		s.logger.Warn("report parsing failed",
			"session_id", session.ID,
			"file", fileRecord.OriginalName,
			"error", parseErr,
		)
		return &UploadResult{File: &fileRecord, Session: failed}, nil
	}

	completed, err := s.sessionService.CompleteSession(session.ID, history.DateValue(name.ReportDate))
	if err != nil {
		return nil, err
	}

	s.logger.Info("report processed",
		"session_id", session.ID,
		"customer", customer.Name,
		"network", customer.NetworkName,
		"rows", summary.Rows,
	)

	return &UploadResult{File: &fileRecord, Session: completed}, nil
}

// storeFile сохраняет поток в каталог загрузок под UUID именем,
// сохраняя исходное расширение
func (s *UploadService) storeFile(originalName string, reader io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", 0, apperrors.NewInternalError("не удалось создать каталог загрузок", err)
	}

	storedPath := filepath.Join(s.uploadsDir, uuid.New().String()+filepath.Ext(originalName))
	out, err := os.Create(storedPath)
	if err != nil {
		return "", 0, apperrors.NewInternalError("не удалось создать файл загрузки", err)
	}
	defer out.Close()

	var written int64
	if s.maxSizeBytes > 0 {
		// Защита от заниженного Content-Length: пишем не больше лимита
		written, err = io.Copy(out, io.LimitReader(reader, s.maxSizeBytes+1))
		if err == nil && written > s.maxSizeBytes {
			os.Remove(storedPath)
			return "", 0, apperrors.NewValidationError(
				fmt.Sprintf("файл превышает предельный размер %d байт", s.maxSizeBytes), nil)
		}
	} else {
		written, err = io.Copy(out, reader)
	}
	if err != nil {
		os.Remove(storedPath)
		return "", 0, apperrors.NewInternalError("не удалось записать файл загрузки", err)
	}

	return storedPath, written, nil
}
