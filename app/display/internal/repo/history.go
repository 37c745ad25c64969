package repo

import (
	"context"

	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
)

// HistoryRepo 历史报告仓库接口
type HistoryRepo interface {
	// Save 追加一条记录，并清理超过保留期的记录
	Save(ctx context.Context, e *domain.HistoryEntry) error
	// Get 根据 ID 获取记录，不存在时返回 NotFound
	Get(ctx context.Context, id string) (*domain.HistoryEntry, error)
	// List 返回所有记录，最新的在前
	List(ctx context.Context) ([]*domain.HistoryEntry, error)
}
