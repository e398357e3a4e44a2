package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

const (
	exportMaxRetry     = 3
	downloadLinkTTL    = 5 * time.Minute
	pdfNotReadyMessage = "Your PDF is not ready yet. Export it from the preview page first."
)

// TaskEnqueuer 抽象 asynq.Client，便于测试。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DownloadPresigner 为对象生成限时下载链接。
type DownloadPresigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// ExportHandler 负责 PDF 导出入队与下载。
type ExportHandler struct {
	resumes   store.ResumeStore
	enqueuer  TaskEnqueuer
	presigner DownloadPresigner
	logger    *slog.Logger
}

// NewExportHandler 构造导出处理器。
func NewExportHandler(resumes store.ResumeStore, enqueuer TaskEnqueuer, presigner DownloadPresigner, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		resumes:   resumes,
		enqueuer:  enqueuer,
		presigner: presigner,
		logger:    logger,
	}
}

// Export 将状态标记为 pending 并投递导出任务，然后回到预览页。
func (h *ExportHandler) Export(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	if err := h.resumes.SetExportStatus(ctx, email, database.ExportStatusPending); err != nil {
		logger.Error("mark export pending failed", slog.Any("error", err))
		redirect(c, "/preview.html")
		return
	}

	model, err := h.resumes.FindModel(ctx, email)
	if err != nil {
		logger.Error("load resume for export failed", slog.Any("error", err))
		h.markFailed(ctx, logger, email)
		redirect(c, "/preview.html")
		return
	}

	task, err := tasks.NewResumeExportTask(model.ID, email, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Error("build export task failed", slog.Any("error", err))
		h.markFailed(ctx, logger, email)
		redirect(c, "/preview.html")
		return
	}

	info, err := h.enqueuer.EnqueueContext(ctx, task, asynq.MaxRetry(exportMaxRetry))
	if err != nil {
		logger.Error("enqueue export task failed", slog.Any("error", err))
		h.markFailed(ctx, logger, email)
		redirect(c, "/preview.html")
		return
	}

	logger.Info("export task enqueued",
		slog.Uint64("resume_id", uint64(model.ID)),
		slog.String("task_id", info.ID),
	)
	redirect(c, "/preview.html")
}

// Download 重定向到最近一次导出的 PDF 的预签名链接。
func (h *ExportHandler) Download(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	model, err := h.resumes.FindModel(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("load resume for download failed", slog.Any("error", err))
		c.String(http.StatusInternalServerError, genericErrorMessage)
		return
	}
	if model == nil || model.PdfObjectKey == "" {
		c.String(http.StatusConflict, pdfNotReadyMessage)
		return
	}

	url, err := h.presigner.GeneratePresignedURL(ctx, model.PdfObjectKey, downloadLinkTTL)
	if err != nil {
		logger.Error("generate download link failed", slog.Any("error", err))
		c.String(http.StatusInternalServerError, genericErrorMessage)
		return
	}
	redirect(c, url)
}

func (h *ExportHandler) markFailed(ctx context.Context, logger *slog.Logger, email string) {
	if err := h.resumes.SetExportStatus(ctx, email, database.ExportStatusFailed); err != nil {
		logger.Error("mark export failed failed", slog.Any("error", err))
	}
}

func (h *ExportHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContextOr(c, h.logger)
}
