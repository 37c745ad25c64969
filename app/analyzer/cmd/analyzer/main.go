package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/engine"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/extract"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/render"
)

var (
	flagConfig    = flag.String("config", "app/analyzer/configs/config.yaml", "config path")
	flagPDF       = flag.String("pdf", "", "analyze a device PDF")
	flagComplaint = flag.String("complaint", "", "analyze a complaint text")
	flagOld       = flag.String("old", "", "older PDF for comparison (use with -new)")
	flagNew       = flag.String("new", "", "newer PDF for comparison (use with -old)")
	flagBrand     = flag.String("brand", "", "brand key, empty for the default brand")
	flagLang      = flag.String("lang", "tr", "report language")
	flagSecond    = flag.String("second-lang", "", "second language, enables bilingual output")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*flagConfig)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal("配置错误: 未设置 llm.api_key 或 OPENAI_API_KEY")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer logger.Close()
	logger.Log.Info("启动 Wellness 报告分析...")

	ctx := context.Background()

	// 3. 初始化引擎
	eng, err := engine.NewEngine(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	opts := engine.Options{
		Brand:      *flagBrand,
		TargetLang: *flagLang,
		SecondLang: *flagSecond,
		Bilingual:  *flagSecond != "",
	}

	// 4. 执行分析
	var res *engine.Result
	switch {
	case *flagOld != "" && *flagNew != "":
		oldText, err := extract.File(*flagOld)
		if err != nil {
			logger.Log.Fatalf("读取旧 PDF 失败: %v", err)
		}
		newText, err := extract.File(*flagNew)
		if err != nil {
			logger.Log.Fatalf("读取新 PDF 失败: %v", err)
		}
		res, err = eng.Compare(ctx, oldText, newText, opts)
		if err != nil {
			logger.Log.Fatalf("对比失败: %v", err)
		}
	case *flagComplaint != "":
		res, err = eng.AnalyzeComplaint(ctx, *flagComplaint, opts)
		if err != nil {
			logger.Log.Fatalf("主诉分析失败: %v", err)
		}
	case *flagPDF != "":
		text, err := extract.File(*flagPDF)
		if err != nil {
			logger.Log.Fatalf("读取 PDF 失败: %v", err)
		}
		opts.FileName = filepath.Base(*flagPDF)
		res, err = eng.AnalyzePDF(ctx, text, opts)
		if err != nil {
			logger.Log.Fatalf("PDF 分析失败: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	// 5. 输出 JSON 与 HTML
	if err := writeOutputs(cfg.Output.Dir, res); err != nil {
		logger.Log.Fatalf("写入输出失败: %v", err)
	}
	logger.Log.Infof("✅ 报告生成完毕: %s", filepath.Join(cfg.Output.Dir, res.ID+".html"))
}

// writeOutputs 写出 <id>.json 和 <id>.html
func writeOutputs(dir string, res *engine.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(res.Context, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, res.ID+".json"), data, 0o644); err != nil {
		return err
	}

	r, err := render.New()
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, res.ID+".html"))
	if err != nil {
		return err
	}
	defer f.Close()

	view := render.View{
		ID:        res.ID,
		Title:     res.Title,
		CreatedAt: res.CreatedAt.Format("2006-01-02 15:04"),
		Context:   res.Context,
	}
	if err := r.Execute(f, res.Template, view); err != nil {
		return fmt.Errorf("render %s: %w", res.Template, err)
	}
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: analyzer -pdf report.pdf | -complaint \"...\" | -old a.pdf -new b.pdf\n")
		flag.PrintDefaults()
	}
}
