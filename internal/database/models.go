package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 导出状态。
const (
	ExportStatusPending   = "pending"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name         string `gorm:"size:255"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255"`
}

// Resume 表示一个用户的简历，按 Email 与 User 关联。
// 结构化字段以 JSON 文本存储，读取时由 resume 包解码。
type Resume struct {
	gorm.Model
	Email        string         `gorm:"uniqueIndex;size:255;not null"`
	PersonalData datatypes.JSON `gorm:"type:text"`
	Summary      string         `gorm:"type:text"`
	Experience   datatypes.JSON `gorm:"type:text"`
	Education    datatypes.JSON `gorm:"type:text"`
	Skills       datatypes.JSON `gorm:"type:text"`
	Projects     datatypes.JSON `gorm:"type:text"`
	Template     string         `gorm:"size:32;default:modern"`
	PdfObjectKey string         `gorm:"size:512"`
	ExportStatus string         `gorm:"size:32"`
}
