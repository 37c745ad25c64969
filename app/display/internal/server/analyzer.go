package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/engine"
	wrLogger "github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/render"
	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/usecase"
)

// AnalyzerConfig 将 internal/conf.Analyzer 转换为 pkg/config.Config
func AnalyzerConfig(c *conf.Analyzer) *config.Config {
	cfg := &config.Config{}
	if c != nil {
		if c.Llm != nil {
			cfg.LLM = config.LLMConfig{
				BaseURL: c.Llm.BaseUrl,
				APIKey:  c.Llm.ApiKey,
				Model:   c.Llm.Model,
				Timeout: c.Llm.Timeout,
			}
		}
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if c.Concurrency != nil {
			cfg.Concurrency = config.ConcurrencyConfig{
				QPS: int(c.Concurrency.Qps),
				RPM: int(c.Concurrency.Rpm),
			}
		}
		if c.Pipeline != nil {
			cfg.Pipeline = config.PipelineConfig{
				TrustThreshold: int(c.Pipeline.TrustThreshold),
				ChildAgeLimit:  int(c.Pipeline.ChildAgeLimit),
				DefaultBrand:   c.Pipeline.DefaultBrand,
			}
		}
		if c.Catalog != nil {
			cfg.Catalog = config.CatalogConfig{Path: c.Catalog.Path}
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

// NewAnalyzerEngine 初始化报告引擎
func NewAnalyzerEngine(c *conf.Analyzer, logger log.Logger) (*engine.Engine, func(), error) {
	cfg := AnalyzerConfig(c)
	helper := log.NewHelper(logger)

	// 初始化日志
	if err := wrLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init analyzer logger: %v", err)
		_ = wrLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(context.Background(), cfg)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		wrLogger.Close()
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("Cleaning up analyzer engine")
		wrLogger.Close()
	}
	return eng, cleanup, nil
}

// NewAnalyzer 引擎作为用例层的 Analyzer
func NewAnalyzer(eng *engine.Engine) usecase.Analyzer {
	return eng
}

// NewCatalog 表单中展示的品牌来自引擎的目录
func NewCatalog(eng *engine.Engine) *catalog.Catalog {
	return eng.Catalog()
}

// NewRenderer 解析内嵌模板
func NewRenderer() (*render.Renderer, error) {
	return render.New()
}
