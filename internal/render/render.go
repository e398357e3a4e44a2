package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"resumeBuilder/internal/resume"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer 持有解析好的页面与简历版式模板。
type Renderer struct {
	tmpl *template.Template
}

// New 解析嵌入的全部模板。
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for _, t := range resume.Templates {
		if tmpl.Lookup(t.Page()) == nil {
			return nil, fmt.Errorf("layout %q missing", t.Page())
		}
	}

	return &Renderer{tmpl: tmpl}, nil
}

// MustNew 在解析失败时 panic，用于启动阶段。
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Templates 返回模板集合，供 gin 的 SetHTMLTemplate 使用。
func (r *Renderer) Templates() *template.Template {
	return r.tmpl
}

// PreviewData 是版式模板的输入。
type PreviewData struct {
	Resume resume.Record
	// Export 为 true 时省略页面上的操作按钮，用于 PDF 导出。
	Export bool
}

// Preview 按简历选定的版式渲染独立 HTML。
func (r *Renderer) Preview(w io.Writer, rec resume.Record) error {
	layout := resume.TemplateOrDefault(string(rec.Template))
	if err := r.tmpl.ExecuteTemplate(w, layout.Page(), PreviewData{Resume: rec, Export: true}); err != nil {
		return fmt.Errorf("render %s: %w", layout.Page(), err)
	}
	return nil
}
