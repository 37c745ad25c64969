package domain

import (
	"strings"
	"time"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
)

// CreatedAtLayout 历史记录时间格式（UTC）
const CreatedAtLayout = "2006-01-02 15:04"

// DefaultRetention 历史记录默认保留 90 天
const DefaultRetention = 90 * 24 * time.Hour

// HistoryEntry 一条历史报告，写入后不再修改
type HistoryEntry struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	CreatedAt string              `json:"created_at"`
	Type      string              `json:"type"`
	Template  string              `json:"template"`
	Ctx       model.ReportContext `json:"ctx"`
}

// HistorySummary 历史列表中的摘要
type HistorySummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	Type      string `json:"type"`
}

// Summary 转换为摘要
func (e *HistoryEntry) Summary() *HistorySummary {
	return &HistorySummary{ID: e.ID, Title: e.Title, CreatedAt: e.CreatedAt, Type: e.Type}
}

var createdAtLayouts = []string{
	CreatedAtLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.DateOnly,
}

// ParseCreatedAt 兼容几种历史格式，均无法解析时返回 false
func ParseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Expired 记录早于保留期限时返回 true；时间无法解析的记录视为未过期
func (e *HistoryEntry) Expired(now time.Time, retention time.Duration) bool {
	t, ok := ParseCreatedAt(e.CreatedAt)
	if !ok {
		return false
	}
	return t.Before(now.Add(-retention))
}
