package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

// TemplateHandler 处理版式选择与预览。
type TemplateHandler struct {
	resumes store.ResumeStore
	logger  *slog.Logger
}

// NewTemplateHandler 构造版式处理器。
func NewTemplateHandler(resumes store.ResumeStore, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{resumes: resumes, logger: logger}
}

// ShowTemplates 渲染版式列表并标记当前选择。
func (h *TemplateHandler) ShowTemplates(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		return
	}
	h.renderTemplates(c, email, http.StatusOK, "")
}

// ChooseTemplate 处理 POST /template.html。
func (h *TemplateHandler) ChooseTemplate(c *gin.Context) {
	h.selectTemplate(c, c.PostForm("template"), func(resume.Template) string {
		return "/preview.html"
	})
}

// SelectTemplate 处理 GET /select_template/:name，保存后直接跳到该版式。
func (h *TemplateHandler) SelectTemplate(c *gin.Context) {
	h.selectTemplate(c, c.Param("name"), resume.Template.Path)
}

// Layout 以指定版式渲染当前用户的简历。
func (h *TemplateHandler) Layout(t resume.Template) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := currentEmail(c)
		if !ok {
			return
		}

		rec, err := h.resumes.Load(c.Request.Context(), email)
		if err != nil {
			h.loggerFromContext(c).Error("load resume for layout failed",
				slog.String("template", string(t)),
				slog.Any("error", err),
			)
			rec = resume.Empty(email)
		}
		data := pageData(c, t.Title())
		data["Resume"] = rec
		data["Export"] = false
		renderPage(c, http.StatusOK, t.Page(), data)
	}
}

// Preview 跳转到用户选定的版式页面。
func (h *TemplateHandler) Preview(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		return
	}

	rec, err := h.resumes.Load(c.Request.Context(), email)
	if err != nil {
		h.loggerFromContext(c).Error("load resume for preview failed", slog.Any("error", err))
		redirect(c, resume.DefaultTemplate.Path())
		return
	}
	redirect(c, resume.TemplateOrDefault(string(rec.Template)).Path())
}

func (h *TemplateHandler) selectTemplate(c *gin.Context, name string, next func(resume.Template) string) {
	email, ok := currentEmail(c)
	if !ok {
		return
	}

	logger := h.loggerFromContext(c).With(slog.String("template", name))
	t, valid := resume.ParseTemplate(name)
	if !valid {
		logger.Info("unknown template requested")
		h.renderTemplates(c, email, http.StatusBadRequest, unknownTemplateMsg)
		return
	}

	if err := h.resumes.SaveTemplate(c.Request.Context(), email, t); err != nil {
		logger.Error("save template failed", slog.Any("error", err))
		redirect(c, "/template.html")
		return
	}
	redirect(c, next(t))
}

func (h *TemplateHandler) renderTemplates(c *gin.Context, email string, status int, message string) {
	data := pageData(c, "Choose a template")
	rec, err := h.resumes.Load(c.Request.Context(), email)
	if err != nil {
		h.loggerFromContext(c).Error("load resume for template page failed", slog.Any("error", err))
		rec = resume.Empty(email)
		if message == "" {
			message = genericErrorMessage
		}
	}
	data["Resume"] = rec
	data["Templates"] = resume.Templates
	data["Error"] = message
	renderPage(c, status, "template.html", data)
}

func (h *TemplateHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContextOr(c, h.logger)
}
