package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/prompt"
)

//go:embed templates/*.html
var templateFS embed.FS

// 模板标签，历史记录中按此名称选择模板
const (
	TemplateReport    = "report.html"
	TemplateComplaint = "complaint_report.html"
	TemplateCompare   = "compare_report.html"
	TemplateIndex     = "index.html"
)

// View 报告页面的数据
type View struct {
	ID        string
	Title     string
	CreatedAt string
	Context   model.ReportContext
}

// Link 首页历史列表中的一条
type Link struct {
	ID        string
	Title     string
	Type      string
	CreatedAt string
}

// Language 语言下拉选项
type Language struct {
	Code  string
	Label string
}

// IndexView 首页数据
type IndexView struct {
	Brands    []*catalog.Brand
	Languages []Language
	History   []Link
}

// Renderer 持有每个页面各自解析好的模板
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// New 解析内嵌模板，每个页面与 base.html 组合成独立的模板集
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{TemplateReport, TemplateComplaint, TemplateCompare, TemplateIndex} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Has 模板是否存在
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Execute 渲染指定模板
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, name, data)
}

// Languages 按代码排序的语言选项，auto 排在最前
func Languages() []Language {
	out := make([]Language, 0, len(prompt.LanguageLabels))
	for code, label := range prompt.LanguageLabels {
		out = append(out, Language{Code: code, Label: label})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == "auto" || out[j].Code == "auto" {
			return out[i].Code == "auto"
		}
		return out[i].Code < out[j].Code
	})
	return out
}
