package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/extract"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/llm"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/metrics"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/parser"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/pipeline"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/prompt"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/render"
)

// ErrEmptyInput 输入文本为空
var ErrEmptyInput = errors.New("empty input")

// 报告类型
const (
	TypePDF       = "pdf"
	TypeComplaint = "complaint"
	TypeCompare   = "compare"
)

// 报告 ID 前缀
const (
	PrefixPDF       = "pdf"
	PrefixComplaint = "cmp"
	PrefixCompare   = "compare"
)

// Options 单次请求的品牌与语言选项
type Options struct {
	Brand      string
	TargetLang string
	SecondLang string
	Bilingual  bool
	// FileName 上传文件名，PDF 报告缺少姓名时用作标题
	FileName string
}

// Result 一次成功分析的产物，可直接写入历史记录
type Result struct {
	ID        string
	Type      string
	Template  string
	Title     string
	CreatedAt time.Time
	Context   model.ReportContext
}

// Engine 核心处理引擎
type Engine struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	parser   *parser.Parser
	client   llm.Client
	now      func() time.Time
}

// NewEngine 创建引擎实例
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	client, err := llm.NewChatClient(ctx, cfg.LLM, cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	return NewEngineWithClient(cfg, client)
}

// NewEngineWithClient 使用给定的 LLM 客户端创建引擎
func NewEngineWithClient(cfg *config.Config, client llm.Client) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("加载目录失败: %w", err)
	}
	cat, err = cat.WithDefaultBrand(cfg.Pipeline.DefaultBrand)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		pipeline: pipeline.New(cat, pipeline.OptionsFromConfig(cfg.Pipeline)),
		parser:   parser.New(client),
		client:   client,
		now:      time.Now,
	}, nil
}

// Catalog 引擎使用的目录
func (e *Engine) Catalog() *catalog.Catalog {
	return e.pipeline.Catalog()
}

// NewReportID 生成 <前缀>_<UTC 时间>_<6 位大写十六进制>
func NewReportID(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s_%s_%s", prefix, now.UTC().Format("20060102150405"), suffix)
}

// request 解析后的品牌和语言
type request struct {
	brand  string
	ctx    model.ReportContext
	prompt prompt.Input
}

func (e *Engine) prepare(opts Options) request {
	cat := e.Catalog()
	brand := cat.ResolveBrand(opts.Brand)
	target, second := prompt.NormalizeLanguages(opts.TargetLang, opts.SecondLang, opts.Bilingual)

	return request{
		brand: brand,
		ctx: model.ReportContext{
			Brand:      brand,
			BrandLabel: cat.Label(brand),
			TargetLang: target,
			SecondLang: second,
			Bilingual:  second != "",
		},
		prompt: prompt.Input{
			TargetLang: target,
			SecondLang: second,
			BrandLabel: cat.Label(brand),
			Products:   cat.Products(brand),
			Unbranded:  cat.IsUnbranded(brand),
		},
	}
}

func (e *Engine) finish(typ, prefix, template, title string, ctx model.ReportContext) *Result {
	now := e.now()
	metrics.ReportsTotal.WithLabelValues(typ, "ok").Inc()
	res := &Result{
		ID:        NewReportID(prefix, now),
		Type:      typ,
		Template:  template,
		Title:     title,
		CreatedAt: now.UTC(),
		Context:   ctx,
	}
	logger.Log.Infof("报告生成完成 [%s] %s: %s", typ, res.ID, title)
	return res
}

func (e *Engine) fail(typ string, err error) error {
	metrics.ReportsTotal.WithLabelValues(typ, "error").Inc()
	logger.Log.Errorf("报告生成失败 [%s]: %v", typ, err)
	return err
}

// complete 请求模型并解析到 v
func (e *Engine) complete(ctx context.Context, kind, p string, v any) error {
	raw, err := e.client.Complete(ctx, kind, p)
	if err != nil {
		return err
	}
	return e.parser.ParseInto(ctx, raw, v)
}

type cardsPart struct {
	SystemCards model.SystemCards `json:"sistem_kartlari"`
}

// AnalyzePDF 分两次请求生成 PDF 报告：总体部分和系统卡片部分
func (e *Engine) AnalyzePDF(ctx context.Context, pdfText string, opts Options) (*Result, error) {
	if strings.TrimSpace(pdfText) == "" {
		return nil, e.fail(TypePDF, fmt.Errorf("%w: pdf text", ErrEmptyInput))
	}
	req := e.prepare(opts)
	logger.Log.Infof("开始分析 PDF，品牌 [%s]，语言 %s/%s", req.brand, req.ctx.TargetLang, req.ctx.SecondLang)

	var rec model.Record
	if err := e.complete(ctx, llm.KindPDFGeneral, prompt.PDFGeneral(pdfText, req.prompt), &rec); err != nil {
		return nil, e.fail(TypePDF, fmt.Errorf("总体部分: %w", err))
	}

	var cards cardsPart
	systems := e.Catalog().Systems()
	if err := e.complete(ctx, llm.KindPDFCards, prompt.PDFSystemCards(pdfText, systems, req.prompt), &cards); err != nil {
		return nil, e.fail(TypePDF, fmt.Errorf("系统卡片部分: %w", err))
	}
	rec.SystemCards = cards.SystemCards

	out := e.pipeline.Run(&rec, req.brand)
	out.BodyForm = extract.MergeBodyForm(out.BodyForm, extract.BodyForm(pdfText))
	logger.Log.WithField("cards", len(out.SystemCards)).Debugf("PDF 报告: %+v", out.Person)

	title := out.Person.Name.String()
	if strings.TrimSpace(title) == "" {
		title = opts.FileName
	}
	if strings.TrimSpace(title) == "" {
		title = "PDF Raporu"
	}

	req.ctx.Analysis = out
	return e.finish(TypePDF, PrefixPDF, render.TemplateReport, strings.TrimSpace(title), req.ctx), nil
}

// AnalyzeComplaint 基于主诉文本生成报告
func (e *Engine) AnalyzeComplaint(ctx context.Context, complaint string, opts Options) (*Result, error) {
	complaint = strings.TrimSpace(complaint)
	if complaint == "" {
		return nil, e.fail(TypeComplaint, fmt.Errorf("%w: complaint text", ErrEmptyInput))
	}
	req := e.prepare(opts)

	var rep model.ComplaintReport
	if err := e.complete(ctx, llm.KindComplaint, prompt.Complaint(complaint, req.prompt), &rep); err != nil {
		return nil, e.fail(TypeComplaint, err)
	}
	e.pipeline.FilterProducts(rep.ProductLists(), req.brand)

	req.ctx.Complaint = &rep
	req.ctx.ComplaintText = complaint
	return e.finish(TypeComplaint, PrefixComplaint, render.TemplateComplaint, "Şikayet Analizi", req.ctx), nil
}

// Compare 对比新旧两份检测报告
func (e *Engine) Compare(ctx context.Context, oldText, newText string, opts Options) (*Result, error) {
	if strings.TrimSpace(oldText) == "" || strings.TrimSpace(newText) == "" {
		return nil, e.fail(TypeCompare, fmt.Errorf("%w: both tests are required", ErrEmptyInput))
	}
	req := e.prepare(opts)

	var rep model.ComparisonReport
	if err := e.complete(ctx, llm.KindCompare, prompt.Compare(oldText, newText, req.prompt), &rep); err != nil {
		return nil, e.fail(TypeCompare, err)
	}
	e.pipeline.FilterProducts(rep.ProductLists(), req.brand)

	req.ctx.Comparison = &rep
	title := "Karşılaştırma Raporu – " + req.ctx.BrandLabel
	return e.finish(TypeCompare, PrefixCompare, render.TemplateCompare, title, req.ctx), nil
}
