package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

// wizardStep 描述向导中的一步：页面、下一步以及它负责写入的那一列。
type wizardStep struct {
	Name  string
	Page  string
	Title string
	Next  string
	save  func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error
}

// Path 返回本步骤的页面路由。
func (s wizardStep) Path() string {
	return "/" + s.Page
}

// SavePath 返回 /save_* 路由。
func (s wizardStep) SavePath() string {
	return "/save_" + s.Name
}

var wizardSteps = []wizardStep{
	{
		Name: "personal", Page: "personal.html", Title: "Personal details", Next: "/summary.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			var form personalForm
			if err := c.ShouldBind(&form); err != nil {
				return err
			}
			return resumes.SavePersonal(ctx, email, form.toPersonalData())
		},
	},
	{
		Name: "summary", Page: "summary.html", Title: "Professional summary", Next: "/experience.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			return resumes.SaveSummary(ctx, email, strings.TrimSpace(c.PostForm("summary")))
		},
	},
	{
		Name: "experience", Page: "experience.html", Title: "Experience", Next: "/education.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			items := resume.CollectExperience(
				c.PostFormArray("job_title"),
				c.PostFormArray("company"),
				c.PostFormArray("duration"),
				c.PostFormArray("description"),
			)
			return resumes.SaveExperience(ctx, email, items)
		},
	},
	{
		Name: "education", Page: "education.html", Title: "Education", Next: "/skills.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			items := resume.CollectEducation(
				c.PostFormArray("degree"),
				c.PostFormArray("institution"),
				c.PostFormArray("year"),
			)
			return resumes.SaveEducation(ctx, email, items)
		},
	},
	{
		Name: "skills", Page: "skills.html", Title: "Skills", Next: "/project.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			return resumes.SaveSkills(ctx, email, resume.CollectSkills(c.PostFormArray("skills")))
		},
	},
	{
		Name: "projects", Page: "project.html", Title: "Projects", Next: "/template.html",
		save: func(ctx context.Context, resumes store.ResumeStore, email string, c *gin.Context) error {
			items := resume.CollectProjects(
				c.PostFormArray("name"),
				c.PostFormArray("description"),
			)
			return resumes.SaveProjects(ctx, email, items)
		},
	},
}

type personalForm struct {
	FirstName string `form:"fname"`
	LastName  string `form:"lname"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	Address   string `form:"address"`
	LinkedIn  string `form:"linkedin"`
}

func (f personalForm) toPersonalData() resume.PersonalData {
	return resume.PersonalData{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		LinkedIn:  strings.TrimSpace(f.LinkedIn),
	}
}

// ResumeHandler 负责向导各步骤的展示与保存。
type ResumeHandler struct {
	resumes store.ResumeStore
	logger  *slog.Logger
}

// NewResumeHandler 构造向导处理器。
func NewResumeHandler(resumes store.ResumeStore, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, logger: logger}
}

// Show 加载简历并渲染预填的步骤页面。
func (h *ResumeHandler) Show(step wizardStep) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := currentEmail(c)
		if !ok {
			return
		}

		rec, err := h.resumes.Load(c.Request.Context(), email)
		data := pageData(c, step.Title)
		if err != nil {
			h.loggerFromContext(c).Error("load resume failed", slog.String("step", step.Name), slog.Any("error", err))
			rec = resume.Empty(email)
			data["Error"] = genericErrorMessage
		}
		data["Resume"] = rec
		renderPage(c, http.StatusOK, step.Page, data)
	}
}

// Save 只写入本步骤对应的列，成功后跳转到下一步。
func (h *ResumeHandler) Save(step wizardStep) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := currentEmail(c)
		if !ok {
			return
		}

		if err := step.save(c.Request.Context(), h.resumes, email, c); err != nil {
			h.loggerFromContext(c).Error("save resume step failed",
				slog.String("step", step.Name),
				slog.Any("error", err),
			)
			redirect(c, step.Path())
			return
		}
		redirect(c, step.Next)
	}
}

func (h *ResumeHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContextOr(c, h.logger)
}
