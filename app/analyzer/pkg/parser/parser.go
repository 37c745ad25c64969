package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/llm"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/metrics"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/prompt"
)

var (
	// ErrMalformedResponse 修复之后仍然无法解析
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrInvalidRecordShape 解析成功但顶层不是对象，或字段类型与记录不符
	ErrInvalidRecordShape = fmt.Errorf("%w: invalid record shape", ErrMalformedResponse)
	// ErrUpstreamService 修复请求本身失败
	ErrUpstreamService = llm.ErrUpstreamService
)

const fence = "```"

// Clean 去掉代码围栏，并截取第一个 '{' 到最后一个 '}' 之间的内容
func Clean(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, fence) {
		lines := strings.Split(text, "\n")
		lines = lines[1:]
		if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), fence) {
			lines = lines[:n-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		text = strings.TrimSpace(text[first : last+1])
	}
	return text
}

// Decode 严格解码到 v，v 为 nil 时只校验顶层是对象
func Decode(raw string, v any) error {
	cleaned := Clean(raw)
	if cleaned == "" {
		return fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}

	var top any
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if _, ok := top.(map[string]any); !ok {
		return fmt.Errorf("%w: top level is %T", ErrInvalidRecordShape, top)
	}
	if v == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecordShape, err)
	}
	return nil
}

// Parser 解析模型输出，失败时请求一次修复
type Parser struct {
	client llm.Client
}

// New 创建解析器
func New(client llm.Client) *Parser {
	return &Parser{client: client}
}

// Parse 解析为通用对象
func (p *Parser) Parse(ctx context.Context, raw string) (map[string]any, error) {
	var out map[string]any
	if err := p.ParseInto(ctx, raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseInto 解析到 v；第一次失败后最多请求一次修复，不会有第三次尝试
func (p *Parser) ParseInto(ctx context.Context, raw string, v any) error {
	logger.Log.Debugf("模型原始输出: %q", truncate(raw, 2000))

	firstErr := Decode(raw, v)
	if firstErr == nil {
		return nil
	}
	logger.Log.Warnf("JSON 解析失败，请求修复: %v", firstErr)

	repaired, err := p.client.Complete(ctx, llm.KindRepair, prompt.Repair(raw))
	if err != nil {
		metrics.RepairsTotal.WithLabelValues("upstream_error").Inc()
		return fmt.Errorf("修复请求失败: %w", err)
	}
	logger.Log.Debugf("修复后的输出: %q", truncate(repaired, 2000))

	reset(v)
	if err := Decode(repaired, v); err != nil {
		metrics.RepairsTotal.WithLabelValues("failed").Inc()
		logger.Log.Errorf("修复后仍无法解析: %v", err)
		return fmt.Errorf("after repair: %w", err)
	}
	metrics.RepairsTotal.WithLabelValues("ok").Inc()
	return nil
}

// reset 清掉第一次解码可能留下的部分字段
func reset(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
