package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/engine"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/extract"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/parser"
	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
	"github.com/iWorld-y/wellness_report/app/display/internal/repo"
)

// Analyzer 报告生成引擎，*engine.Engine 实现了该接口
type Analyzer interface {
	AnalyzePDF(ctx context.Context, pdfText string, opts engine.Options) (*engine.Result, error)
	AnalyzeComplaint(ctx context.Context, complaint string, opts engine.Options) (*engine.Result, error)
	Compare(ctx context.Context, oldText, newText string, opts engine.Options) (*engine.Result, error)
}

// Extractor 从上传内容中提取文本
type Extractor func(src io.Reader) (string, error)

// ReportUseCase 报表业务逻辑
type ReportUseCase struct {
	repo      repo.HistoryRepo
	analyzer  Analyzer
	extract   Extractor
	retention time.Duration
	now       func() time.Time
	log       *log.Helper
}

// NewReportUseCase 创建报表业务逻辑实例
func NewReportUseCase(repo repo.HistoryRepo, analyzer Analyzer, c *conf.Data, logger log.Logger) *ReportUseCase {
	retention := domain.DefaultRetention
	if c != nil && c.History != nil && c.History.Retention != "" {
		if d, err := time.ParseDuration(c.History.Retention); err == nil && d > 0 {
			retention = d
		}
	}
	return &ReportUseCase{
		repo:      repo,
		analyzer:  analyzer,
		extract:   extract.Upload,
		retention: retention,
		now:       time.Now,
		log:       log.NewHelper(logger),
	}
}

// AnalyzePDF 提取上传的 PDF 文本并生成报告，成功后写入历史
func (uc *ReportUseCase) AnalyzePDF(ctx context.Context, src io.Reader, opts engine.Options) (*domain.HistoryEntry, error) {
	text, err := uc.extract(src)
	if err != nil {
		uc.log.Errorf("extract pdf %q: %v", opts.FileName, err)
		return nil, kerrors.BadRequest("INVALID_PDF", "PDF okunamadı")
	}
	res, err := uc.analyzer.AnalyzePDF(ctx, text, opts)
	return uc.save(ctx, res, err)
}

// AnalyzeComplaint 根据主诉生成报告
func (uc *ReportUseCase) AnalyzeComplaint(ctx context.Context, complaint string, opts engine.Options) (*domain.HistoryEntry, error) {
	res, err := uc.analyzer.AnalyzeComplaint(ctx, complaint, opts)
	return uc.save(ctx, res, err)
}

// Compare 对比两份上传的 PDF
func (uc *ReportUseCase) Compare(ctx context.Context, oldSrc, newSrc io.Reader, opts engine.Options) (*domain.HistoryEntry, error) {
	oldText, err := uc.extract(oldSrc)
	if err != nil {
		uc.log.Errorf("extract old pdf: %v", err)
		return nil, kerrors.BadRequest("INVALID_PDF", "eski PDF okunamadı")
	}
	newText, err := uc.extract(newSrc)
	if err != nil {
		uc.log.Errorf("extract new pdf: %v", err)
		return nil, kerrors.BadRequest("INVALID_PDF", "yeni PDF okunamadı")
	}
	res, err := uc.analyzer.Compare(ctx, oldText, newText, opts)
	return uc.save(ctx, res, err)
}

// save 失败的请求不写历史
func (uc *ReportUseCase) save(ctx context.Context, res *engine.Result, err error) (*domain.HistoryEntry, error) {
	if err != nil {
		return nil, mapError(err)
	}
	entry := &domain.HistoryEntry{
		ID:        res.ID,
		Title:     res.Title,
		CreatedAt: res.CreatedAt.UTC().Format(domain.CreatedAtLayout),
		Type:      res.Type,
		Template:  res.Template,
		Ctx:       res.Context,
	}
	if err := uc.repo.Save(ctx, entry); err != nil {
		uc.log.Errorf("save history %s: %v", entry.ID, err)
		return nil, kerrors.InternalServer("HISTORY_SAVE_FAILED", "rapor kaydedilemedi")
	}
	return entry, nil
}

// mapError 把引擎错误转换为 kratos 错误
func mapError(err error) error {
	switch {
	case errors.Is(err, engine.ErrEmptyInput):
		return kerrors.BadRequest("EMPTY_INPUT", err.Error())
	case errors.Is(err, parser.ErrUpstreamService):
		return kerrors.ServiceUnavailable("UPSTREAM_UNAVAILABLE", "yapay zekâ servisine ulaşılamadı").WithCause(err)
	case errors.Is(err, parser.ErrMalformedResponse):
		return kerrors.InternalServer("MALFORMED_RESPONSE", "yapay zekâ yanıtı geçersiz formatta döndü").WithCause(err)
	default:
		return kerrors.InternalServer("ANALYSIS_FAILED", "analiz başarısız").WithCause(err)
	}
}

// Get 根据ID获取报告
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	return uc.repo.Get(ctx, id)
}

// Recent 保留期内的报告摘要，最新的在前
func (uc *ReportUseCase) Recent(ctx context.Context) ([]*domain.HistorySummary, error) {
	entries, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]*domain.HistorySummary, 0, len(entries))
	for _, e := range entries {
		if e.Expired(now, uc.retention) {
			continue
		}
		out = append(out, e.Summary())
	}
	return out, nil
}

// All 全部历史记录，供管理员查看
func (uc *ReportUseCase) All(ctx context.Context) ([]*domain.HistoryEntry, error) {
	return uc.repo.List(ctx)
}
