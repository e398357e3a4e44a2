package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeExport = "resume:export"
)

// ResumeExportPayload 描述导出 PDF 所需的最小信息。
type ResumeExportPayload struct {
	ResumeID      uint   `json:"resume_id"`
	Email         string `json:"email"`
	CorrelationID string `json:"correlation_id"`
}

// NewResumeExportTask 构造一个新的简历 PDF 导出任务。
func NewResumeExportTask(resumeID uint, email, correlationID string) (*asynq.Task, error) {
	if email == "" {
		return nil, fmt.Errorf("export task requires an email")
	}
	payload, err := json.Marshal(ResumeExportPayload{
		ResumeID:      resumeID,
		Email:         email,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeExport, payload), nil
}
