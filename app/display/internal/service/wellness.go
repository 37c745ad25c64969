package service

import (
	"bytes"
	"mime/multipart"
	nethttp "net/http"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/engine"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/prompt"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/render"
	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
	"github.com/iWorld-y/wellness_report/app/display/internal/usecase"
)

const defaultMaxUploadMb = 32

// WellnessService 表单页面、报告页面和历史接口
type WellnessService struct {
	ucReport  *usecase.ReportUseCase
	ucAdmin   *usecase.AdminUseCase
	renderer  *render.Renderer
	catalog   *catalog.Catalog
	maxUpload int64
	log       *log.Helper
}

func NewWellnessService(ucReport *usecase.ReportUseCase, ucAdmin *usecase.AdminUseCase, renderer *render.Renderer, cat *catalog.Catalog, c *conf.Server, logger log.Logger) *WellnessService {
	maxUpload := int64(defaultMaxUploadMb)
	if c != nil && c.Http != nil && c.Http.MaxUploadMb > 0 {
		maxUpload = c.Http.MaxUploadMb
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &WellnessService{
		ucReport:  ucReport,
		ucAdmin:   ucAdmin,
		renderer:  renderer,
		catalog:   cat,
		maxUpload: maxUpload << 20,
		log:       log.NewHelper(logger),
	}
}

// options 从表单读取品牌和语言
func options(form func(string) string) engine.Options {
	return engine.Options{
		Brand:      form("brand"),
		TargetLang: form("target_lang"),
		SecondLang: form("second_lang"),
		Bilingual:  prompt.ParseBool(form("bilingual")),
	}
}

func redirect(ctx http.Context, entry *domain.HistoryEntry) error {
	nethttp.Redirect(ctx.Response(), ctx.Request(), "/report/"+entry.ID, nethttp.StatusSeeOther)
	return nil
}

func (s *WellnessService) html(ctx http.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.renderer.Execute(&buf, name, data); err != nil {
		s.log.Errorf("render %s: %v", name, err)
		return errors.InternalServer("RENDER_FAILED", "sayfa oluşturulamadı")
	}
	return ctx.Blob(nethttp.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *WellnessService) parseMultipart(ctx http.Context) error {
	req := ctx.Request()
	req.Body = nethttp.MaxBytesReader(ctx.Response(), req.Body, s.maxUpload)
	if err := req.ParseMultipartForm(s.maxUpload); err != nil {
		return errors.BadRequest("INVALID_FORM", "form okunamadı: "+err.Error())
	}
	return nil
}

func formFile(ctx http.Context, field string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := ctx.Request().FormFile(field)
	if err != nil {
		return nil, nil, errors.BadRequest("MISSING_FILE", field+" alanı zorunludur")
	}
	return f, h, nil
}

// Index 首页，附带最近的历史记录
func (s *WellnessService) Index(ctx http.Context) error {
	summaries, err := s.ucReport.Recent(ctx)
	if err != nil {
		return err
	}
	links := make([]render.Link, 0, len(summaries))
	for _, sm := range summaries {
		links = append(links, render.Link{ID: sm.ID, Title: sm.Title, Type: sm.Type, CreatedAt: sm.CreatedAt})
	}
	return s.html(ctx, render.TemplateIndex, render.IndexView{
		Brands:    s.catalog.Brands(),
		Languages: render.Languages(),
		History:   links,
	})
}

// AnalyzePDF POST /analyze-pdf
func (s *WellnessService) AnalyzePDF(ctx http.Context) error {
	if err := s.parseMultipart(ctx); err != nil {
		return err
	}
	f, h, err := formFile(ctx, "pdf_file")
	if err != nil {
		return err
	}
	defer f.Close()

	opts := options(ctx.Request().FormValue)
	opts.FileName = h.Filename
	entry, err := s.ucReport.AnalyzePDF(ctx, f, opts)
	if err != nil {
		return err
	}
	return redirect(ctx, entry)
}

// AnalyzeComplaint POST /analyze-complaint
func (s *WellnessService) AnalyzeComplaint(ctx http.Context) error {
	req := ctx.Request()
	text := strings.TrimSpace(req.FormValue("complaint_text"))
	if text == "" {
		return errors.BadRequest("EMPTY_INPUT", "şikâyet metni boş olamaz")
	}
	entry, err := s.ucReport.AnalyzeComplaint(ctx, text, options(req.FormValue))
	if err != nil {
		return err
	}
	return redirect(ctx, entry)
}

// CompareTests POST /compare-tests
func (s *WellnessService) CompareTests(ctx http.Context) error {
	if err := s.parseMultipart(ctx); err != nil {
		return err
	}
	oldFile, _, err := formFile(ctx, "old_pdf")
	if err != nil {
		return err
	}
	defer oldFile.Close()
	newFile, _, err := formFile(ctx, "new_pdf")
	if err != nil {
		return err
	}
	defer newFile.Close()

	entry, err := s.ucReport.Compare(ctx, oldFile, newFile, options(ctx.Request().FormValue))
	if err != nil {
		return err
	}
	return redirect(ctx, entry)
}

// Report GET /report/{id}，按记录中的模板标签渲染
func (s *WellnessService) Report(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	entry, err := s.ucReport.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.renderer.Has(entry.Template) {
		s.log.Errorf("report %s has unknown template %q", entry.ID, entry.Template)
		return errors.InternalServer("UNKNOWN_TEMPLATE", "rapor şablonu bulunamadı")
	}
	return s.html(ctx, entry.Template, render.View{
		ID:        entry.ID,
		Title:     entry.Title,
		CreatedAt: entry.CreatedAt,
		Context:   entry.Ctx,
	})
}

// History GET /api/history
func (s *WellnessService) History(ctx http.Context) error {
	summaries, err := s.ucReport.Recent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, summaries)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// AdminLogin POST /api/admin/login
func (s *WellnessService) AdminLogin(ctx http.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.BadRequest("INVALID_BODY", "geçersiz istek")
	}
	token, err := s.ucAdmin.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, loginReply{Token: token, Username: req.Username})
}

// AdminReports GET /api/admin/reports，需要管理员令牌
func (s *WellnessService) AdminReports(ctx http.Context) error {
	entries, err := s.ucReport.All(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	return ctx.JSON(nethttp.StatusOK, entries)
}

// Authorize 校验 Authorization: Bearer 令牌
func (s *WellnessService) Authorize(r *nethttp.Request) error {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return errors.Unauthorized("TOKEN_MISSING", "missing bearer token")
	}
	_, err := s.ucAdmin.Verify(strings.TrimSpace(token))
	return err
}
