package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/resume"
)

// ResumeStore 是简历表的读写接口。每个保存方法只改写自己的列。
type ResumeStore interface {
	// Load 返回解码后的简历；没有记录时返回 resume.Empty。
	Load(ctx context.Context, email string) (resume.Record, error)
	FindModel(ctx context.Context, email string) (*database.Resume, error)
	FindModelByID(ctx context.Context, id uint) (*database.Resume, error)
	SavePersonal(ctx context.Context, email string, p resume.PersonalData) error
	SaveSummary(ctx context.Context, email string, summary string) error
	SaveExperience(ctx context.Context, email string, items []resume.Experience) error
	SaveEducation(ctx context.Context, email string, items []resume.Education) error
	SaveSkills(ctx context.Context, email string, skills []string) error
	SaveProjects(ctx context.Context, email string, items []resume.Project) error
	SaveTemplate(ctx context.Context, email string, t resume.Template) error
	SetExportStatus(ctx context.Context, email string, status string) error
	// SetExportResult 记录新生成的 PDF 对象并把状态置为 completed。
	SetExportResult(ctx context.Context, email string, objectKey string) error
}

type gormResumeStore struct {
	db *gorm.DB
}

// NewResumeStore 返回基于 GORM 的 ResumeStore。
func NewResumeStore(db *gorm.DB) ResumeStore {
	return &gormResumeStore{db: db}
}

func (s *gormResumeStore) FindModel(ctx context.Context, email string) (*database.Resume, error) {
	var model database.Resume
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find resume: %w", err)
	}
	return &model, nil
}

func (s *gormResumeStore) FindModelByID(ctx context.Context, id uint) (*database.Resume, error) {
	var model database.Resume
	if err := s.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find resume %d: %w", id, err)
	}
	return &model, nil
}

func (s *gormResumeStore) Load(ctx context.Context, email string) (resume.Record, error) {
	model, err := s.FindModel(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return resume.Empty(normalizeEmail(email)), nil
		}
		return resume.Record{}, err
	}
	return resume.FromModel(*model), nil
}

func (s *gormResumeStore) SavePersonal(ctx context.Context, email string, p resume.PersonalData) error {
	return s.saveJSON(ctx, email, "personal_data", p, func(r *database.Resume, v datatypes.JSON) { r.PersonalData = v })
}

func (s *gormResumeStore) SaveSummary(ctx context.Context, email string, summary string) error {
	row := database.Resume{Email: normalizeEmail(email), Summary: summary}
	return s.upsert(ctx, &row, "summary")
}

func (s *gormResumeStore) SaveExperience(ctx context.Context, email string, items []resume.Experience) error {
	return s.saveJSON(ctx, email, "experience", nonNil(items), func(r *database.Resume, v datatypes.JSON) { r.Experience = v })
}

func (s *gormResumeStore) SaveEducation(ctx context.Context, email string, items []resume.Education) error {
	return s.saveJSON(ctx, email, "education", nonNil(items), func(r *database.Resume, v datatypes.JSON) { r.Education = v })
}

func (s *gormResumeStore) SaveSkills(ctx context.Context, email string, skills []string) error {
	return s.saveJSON(ctx, email, "skills", nonNil(skills), func(r *database.Resume, v datatypes.JSON) { r.Skills = v })
}

func (s *gormResumeStore) SaveProjects(ctx context.Context, email string, items []resume.Project) error {
	return s.saveJSON(ctx, email, "projects", nonNil(items), func(r *database.Resume, v datatypes.JSON) { r.Projects = v })
}

func (s *gormResumeStore) SaveTemplate(ctx context.Context, email string, t resume.Template) error {
	if _, ok := resume.ParseTemplate(string(t)); !ok {
		return fmt.Errorf("unknown template %q", t)
	}
	row := database.Resume{Email: normalizeEmail(email), Template: string(t)}
	return s.upsert(ctx, &row, "template")
}

func (s *gormResumeStore) SetExportStatus(ctx context.Context, email string, status string) error {
	row := database.Resume{Email: normalizeEmail(email), ExportStatus: status}
	return s.upsert(ctx, &row, "export_status")
}

func (s *gormResumeStore) SetExportResult(ctx context.Context, email string, objectKey string) error {
	row := database.Resume{
		Email:        normalizeEmail(email),
		PdfObjectKey: objectKey,
		ExportStatus: database.ExportStatusCompleted,
	}
	if err := upsertColumns(s.db.WithContext(ctx), &row, "pdf_object_key", "export_status"); err != nil {
		return fmt.Errorf("save export result: %w", err)
	}
	return nil
}

func (s *gormResumeStore) saveJSON(ctx context.Context, email, column string, value any, assign func(*database.Resume, datatypes.JSON)) error {
	encoded, err := resume.Encode(value)
	if err != nil {
		return err
	}
	row := database.Resume{Email: normalizeEmail(email)}
	assign(&row, encoded)
	return s.upsert(ctx, &row, column)
}

func (s *gormResumeStore) upsert(ctx context.Context, row *database.Resume, column string) error {
	if err := upsertColumns(s.db.WithContext(ctx), row, column); err != nil {
		return fmt.Errorf("save resume %s: %w", column, err)
	}
	return nil
}

// upsertColumns 插入新行；若 email 已存在则只更新指定列与 updated_at。
func upsertColumns(db *gorm.DB, row *database.Resume, columns ...string) error {
	if row.Template == "" {
		row.Template = string(resume.DefaultTemplate)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(row).Error
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
