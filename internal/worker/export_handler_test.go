package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

type fakePrinter struct {
	html string
	err  error
}

func (p *fakePrinter) FromHTML(_ context.Context, htmlContent string) ([]byte, error) {
	p.html = htmlContent
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName, Size: int64(len(b))}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

type brokenRenderer struct{}

func (brokenRenderer) Preview(io.Writer, resume.Record) error {
	return errors.New("template exploded")
}

func newTestStore(t *testing.T) store.ResumeStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return store.NewResumeStore(db)
}

func newExportTask(t *testing.T, resumeID uint, email string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewResumeExportTask(resumeID, email, "cid-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func resumeID(t *testing.T, resumes store.ResumeStore, email string) uint {
	t.Helper()
	model, err := resumes.FindModel(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	return model.ID
}

func TestProcessTask_UploadsPDFAndReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	resumes := newTestStore(t)
	email := "ada@example.com"

	if err := resumes.SavePersonal(ctx, email, resume.PersonalData{FirstName: "Ada", LastName: "Lovelace"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := resumes.SaveTemplate(ctx, email, resume.TemplateClassic); err != nil {
		t.Fatalf("seed template: %v", err)
	}
	if err := resumes.SetExportResult(ctx, email, "generated-resumes/1/old.pdf"); err != nil {
		t.Fatalf("seed old pdf: %v", err)
	}
	if err := resumes.SetExportStatus(ctx, email, database.ExportStatusPending); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	printer := &fakePrinter{}
	storage := newFakeStorage()
	h := NewExportTaskHandler(resumes, render.MustNew(), printer, storage, nil)

	if err := h.ProcessTask(ctx, newExportTask(t, resumeID(t, resumes, email), email)); err != nil {
		t.Fatalf("process: %v", err)
	}

	if !strings.Contains(printer.html, "layout-classic") || !strings.Contains(printer.html, "Ada Lovelace") {
		t.Fatal("expected the selected layout to be printed")
	}
	if strings.Contains(printer.html, `action="/export"`) {
		t.Fatal("exported html must not contain page actions")
	}

	model, err := resumes.FindModel(ctx, email)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if model.ExportStatus != database.ExportStatusCompleted {
		t.Fatalf("expected completed got %q", model.ExportStatus)
	}
	wantPrefix := fmt.Sprintf("generated-resumes/%d/", model.ID)
	if !strings.HasPrefix(model.PdfObjectKey, wantPrefix) || !strings.HasSuffix(model.PdfObjectKey, ".pdf") {
		t.Fatalf("unexpected object key %q", model.PdfObjectKey)
	}
	if _, ok := storage.uploaded[model.PdfObjectKey]; !ok {
		t.Fatal("pdf was not uploaded")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "generated-resumes/1/old.pdf" {
		t.Fatalf("expected previous pdf to be deleted, got %v", storage.deleted)
	}
}

func TestProcessTask_LoadsResumeByID(t *testing.T) {
	ctx := context.Background()
	resumes := newTestStore(t)

	for _, email := range []string{"ada@example.com", "grace@example.com"} {
		if err := resumes.SaveSummary(ctx, email, "summary of "+email); err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
	}
	graceID := resumeID(t, resumes, "grace@example.com")

	printer := &fakePrinter{}
	h := NewExportTaskHandler(resumes, render.MustNew(), printer, newFakeStorage(), nil)
	if err := h.ProcessTask(ctx, newExportTask(t, graceID, "grace@example.com")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(printer.html, "summary of grace@example.com") {
		t.Fatal("expected grace's resume to be printed")
	}

	grace, _ := resumes.FindModel(ctx, "grace@example.com")
	if grace.ExportStatus != database.ExportStatusCompleted || grace.PdfObjectKey == "" {
		t.Fatalf("grace export not recorded: status=%q key=%q", grace.ExportStatus, grace.PdfObjectKey)
	}
	ada, _ := resumes.FindModel(ctx, "ada@example.com")
	if ada.ExportStatus != "" || ada.PdfObjectKey != "" {
		t.Fatalf("other resume must be untouched: status=%q key=%q", ada.ExportStatus, ada.PdfObjectKey)
	}
}

func TestProcessTask_MissingResumeIsSkipped(t *testing.T) {
	storage := newFakeStorage()
	h := NewExportTaskHandler(newTestStore(t), render.MustNew(), &fakePrinter{}, storage, nil)

	if err := h.ProcessTask(context.Background(), newExportTask(t, 42, "ghost@example.com")); err != nil {
		t.Fatalf("expected nil for missing resume, got %v", err)
	}
	if len(storage.uploaded) != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestProcessTask_RenderFailureSkipsRetryAndMarksFailed(t *testing.T) {
	ctx := context.Background()
	resumes := newTestStore(t)
	email := "ada@example.com"
	if err := resumes.SetExportStatus(ctx, email, database.ExportStatusPending); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewExportTaskHandler(resumes, brokenRenderer{}, &fakePrinter{}, newFakeStorage(), nil)
	err := h.ProcessTask(ctx, newExportTask(t, resumeID(t, resumes, email), email))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	model, _ := resumes.FindModel(ctx, email)
	if model.ExportStatus != database.ExportStatusFailed {
		t.Fatalf("expected failed got %q", model.ExportStatus)
	}
}

func TestProcessTask_PrinterFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	resumes := newTestStore(t)
	email := "ada@example.com"
	if err := resumes.SetExportStatus(ctx, email, database.ExportStatusPending); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewExportTaskHandler(resumes, render.MustNew(), &fakePrinter{err: errors.New("chromium crashed")}, newFakeStorage(), nil)
	err := h.ProcessTask(ctx, newExportTask(t, resumeID(t, resumes, email), email))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}

	model, _ := resumes.FindModel(ctx, email)
	if model.ExportStatus != database.ExportStatusPending {
		t.Fatalf("non-final attempt must leave status pending, got %q", model.ExportStatus)
	}
}

func TestProcessTask_BadPayload(t *testing.T) {
	h := NewExportTaskHandler(newTestStore(t), render.MustNew(), &fakePrinter{}, newFakeStorage(), nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeResumeExport, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
