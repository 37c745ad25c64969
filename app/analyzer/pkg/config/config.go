package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// Timeout 单次请求超时，例如 "180s"
	Timeout string `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// PipelineConfig 后处理流水线配置
type PipelineConfig struct {
	// TrustThreshold 卡片数达到该值时不再补齐
	TrustThreshold int `yaml:"trust_threshold"`
	// ChildAgeLimit 小于该年龄视为儿童
	ChildAgeLimit int    `yaml:"child_age_limit"`
	DefaultBrand  string `yaml:"default_brand"`
}

// CatalogConfig 目录覆盖文件
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig 命令行模式的输出目录
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

const (
	DefaultTrustThreshold = 40
	DefaultChildAgeLimit  = 10
)

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值，环境变量中的 OPENAI_API_KEY 优先于空配置
func (c *Config) ApplyDefaults() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4.1-mini"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 30
	}
	if c.Pipeline.TrustThreshold <= 0 {
		c.Pipeline.TrustThreshold = DefaultTrustThreshold
	}
	if c.Pipeline.ChildAgeLimit <= 0 {
		c.Pipeline.ChildAgeLimit = DefaultChildAgeLimit
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
}
