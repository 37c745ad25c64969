package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
)

// fakeChatModel 模拟 ChatModel
type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestChatClient_Complete(t *testing.T) {
	fm := &fakeChatModel{reply: `{"ok": true}`}
	c := NewChatClientWithModel(fm, nil)

	out, err := c.Complete(context.Background(), KindPDFGeneral, "prompt body")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	require.Len(t, fm.received, 2)
	assert.Equal(t, schema.System, fm.received[0].Role)
	assert.Equal(t, "prompt body", fm.received[1].Content)
}

func TestChatClient_TransportErrorIsUpstream(t *testing.T) {
	fm := &fakeChatModel{err: errors.New("429 too many requests")}
	c := NewChatClientWithModel(fm, nil)

	_, err := c.Complete(context.Background(), KindRepair, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamService)
}

func TestChatClient_CanceledContext(t *testing.T) {
	c := NewChatClientWithModel(&fakeChatModel{}, NewLimiter(config.ConcurrencyConfig{QPS: 1, RPM: 1}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 第一个令牌可用，但 Wait 在 ctx 取消后直接返回错误
	_, err := c.Complete(ctx, KindComplaint, "x")
	assert.ErrorIs(t, err, ErrUpstreamService)
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(config.ConcurrencyConfig{})
	assert.Equal(t, 1, l.Burst())

	l = NewLimiter(config.ConcurrencyConfig{QPS: 3, RPM: 120})
	assert.Equal(t, 3, l.Burst())
	assert.InDelta(t, 2.0, float64(l.Limit()), 1e-9)
}
