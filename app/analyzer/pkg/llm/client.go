package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/metrics"
)

// ErrUpstreamService LLM 服务不可用或返回错误，不做重试
var ErrUpstreamService = errors.New("upstream llm service failure")

// 提示词类型，用作指标标签
const (
	KindPDFGeneral = "pdf_general"
	KindPDFCards   = "pdf_cards"
	KindComplaint  = "complaint"
	KindCompare    = "compare"
	KindRepair     = "repair"
)

const systemPrompt = "Sen bir JSON üreticisisin. Yalnızca geçerli JSON döndür."

// Client 单轮文本补全
type Client interface {
	Complete(ctx context.Context, kind, prompt string) (string, error)
}

// ChatClient 基于 eino ChatModel 的实现，所有请求共享一个限流器
type ChatClient struct {
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
}

// NewChatClient 创建 OpenAI 兼容的客户端
func NewChatClient(ctx context.Context, cfg config.LLMConfig, cc config.ConcurrencyConfig) (*ChatClient, error) {
	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("无效的 LLM 超时配置 %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	return NewChatClientWithModel(chatModel, NewLimiter(cc)), nil
}

// NewLimiter 按 RPM 和 QPS 构造限流器
func NewLimiter(cc config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(cc.RPM) / 60.0)
	burst := cc.QPS
	if burst <= 0 {
		burst = 1
	}
	if cc.RPM <= 0 {
		limit = rate.Inf
	}
	return rate.NewLimiter(limit, burst)
}

// NewChatClientWithModel 使用已有的 ChatModel 创建客户端
func NewChatClientWithModel(cm model.BaseChatModel, limiter *rate.Limiter) *ChatClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &ChatClient{chatModel: cm, limiter: limiter}
}

// Complete 发送一次请求并返回原始文本
func (c *ChatClient) Complete(ctx context.Context, kind, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUpstreamService, kind, err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}

	start := time.Now()
	resp, err := c.chatModel.Generate(ctx, messages)
	metrics.LLMRequestDurationSeconds.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.LLMRequestsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	if err != nil {
		logger.Log.Errorf("LLM 请求失败 [%s]: %v", kind, err)
		return "", fmt.Errorf("%w: %s: %w", ErrUpstreamService, kind, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: %s: empty response", ErrUpstreamService, kind)
	}

	logger.Log.Debugf("LLM 响应 [%s] 长度 %d，耗时 %s", kind, len(resp.Content), time.Since(start))
	return resp.Content, nil
}
