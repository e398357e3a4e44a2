package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

// HTMLRenderer 把简历渲染成独立的 HTML 文档。
type HTMLRenderer interface {
	Preview(w io.Writer, rec resume.Record) error
}

// PDFPrinter 将 HTML 打印为 PDF。
type PDFPrinter interface {
	FromHTML(ctx context.Context, htmlContent string) ([]byte, error)
}

// ObjectStorage 是导出需要的对象存储操作。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExportTaskHandler 负责消费简历 PDF 导出任务。
type ExportTaskHandler struct {
	resumes  store.ResumeStore
	renderer HTMLRenderer
	printer  PDFPrinter
	storage  ObjectStorage
	logger   *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(resumes store.ResumeStore, renderer HTMLRenderer, printer PDFPrinter, storage ObjectStorage, logger *slog.Logger) *ExportTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportTaskHandler{
		resumes:  resumes,
		renderer: renderer,
		printer:  printer,
		storage:  storage,
		logger:   logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ResumeExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode export payload: %v: %w", err, asynq.SkipRetry)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
		slog.String("email", payload.Email),
	)
	log.Info("starting resume export")

	model, err := h.resumes.FindModelByID(ctx, payload.ResumeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("resume not found, skipping task", slog.Int("code", errcode.ResumeMissing))
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return classify(errcode.SystemError, err)
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !errors.Is(retErr, asynq.SkipRetry) && !isFinalAsynqAttempt(ctx) {
			return
		}
		if err := h.resumes.SetExportStatus(context.WithoutCancel(ctx), model.Email, database.ExportStatusFailed); err != nil {
			log.Error("mark export failed failed", slog.Any("error", err))
		}
	}()

	var html bytes.Buffer
	if err := h.renderer.Preview(&html, resume.FromModel(*model)); err != nil {
		log.Error("render resume html failed", slog.Any("error", err))
		return classify(errcode.RenderFailed, err)
	}

	pdfBytes, err := h.printer.FromHTML(ctx, html.String())
	if err != nil {
		log.Error("print pdf failed", slog.Any("error", err))
		return classify(errcode.SystemError, err)
	}

	objectName := fmt.Sprintf("generated-resumes/%d/%s.pdf", model.ID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return classify(errcode.StorageError, err)
	}

	if err := h.resumes.SetExportResult(ctx, model.Email, objectName); err != nil {
		log.Error("update resume export result failed", slog.Any("error", err))
		if delErr := h.storage.DeleteObject(context.WithoutCancel(ctx), objectName); delErr != nil {
			log.Warn("remove orphaned pdf failed", slog.String("object", objectName), slog.Any("error", delErr))
		}
		return classify(errcode.SystemError, err)
	}

	if previous := model.PdfObjectKey; previous != "" && previous != objectName {
		if err := h.storage.DeleteObject(ctx, previous); err != nil {
			log.Warn("delete previous pdf failed", slog.String("object", previous), slog.Any("error", err))
		}
	}

	log.Info("resume export completed", slog.String("object", objectName), slog.Int("size", len(pdfBytes)))
	return nil
}

// classify 对不可重试的错误码附加 asynq.SkipRetry。
func classify(code int, err error) error {
	if errcode.Retryable(code) {
		return fmt.Errorf("export failed (code %d): %w", code, err)
	}
	return fmt.Errorf("export failed (code %d): %w: %w", code, err, asynq.SkipRetry)
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
