package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/resume"
)

var (
	// ErrEmailTaken 表示该邮箱已注册。
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound 表示记录不存在。
	ErrNotFound = errors.New("record not found")
)

// UserStore 是账号表的读写接口。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*database.User, error)
	// CreateWithResume 在同一事务中创建账号与空简历。
	CreateWithResume(ctx context.Context, user *database.User) error
}

type gormUserStore struct {
	db *gorm.DB
}

// NewUserStore 返回基于 GORM 的 UserStore。
func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) FindByEmail(ctx context.Context, email string) (*database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *gormUserStore) CreateWithResume(ctx context.Context, user *database.User) error {
	user.Email = normalizeEmail(user.Email)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		shell := database.Resume{Email: user.Email, Template: string(resume.DefaultTemplate)}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&shell).Error; err != nil {
			return fmt.Errorf("create resume shell: %w", err)
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
