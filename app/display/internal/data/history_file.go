package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
)

// FileHistoryRepo 把历史记录保存为一个 JSON 数组
//
// 读改写由进程内互斥锁串行化，多进程同时写入时后写者覆盖。
type FileHistoryRepo struct {
	mu        sync.Mutex
	path      string
	retention time.Duration
	now       func() time.Time
	log       *log.Helper
}

func NewFileHistoryRepo(path string, retention time.Duration, logger log.Logger) *FileHistoryRepo {
	return &FileHistoryRepo{
		path:      path,
		retention: retention,
		now:       time.Now,
		log:       log.NewHelper(logger),
	}
}

// load 文件不存在时返回空列表；内容损坏时记录告警并按空列表处理
func (r *FileHistoryRepo) load() ([]*domain.HistoryEntry, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}

	var entries []*domain.HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		r.log.Warnf("history file %s is corrupted, starting fresh: %v", r.path, err)
		return nil, nil
	}
	return entries, nil
}

// store 先写临时文件再重命名
func (r *FileHistoryRepo) store(entries []*domain.HistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".history-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *FileHistoryRepo) Save(ctx context.Context, e *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	entries = append(entries, e)

	now := r.now()
	kept := entries[:0]
	for _, entry := range entries {
		if entry == nil || entry.Expired(now, r.retention) {
			continue
		}
		kept = append(kept, entry)
	}
	if pruned := len(entries) - len(kept); pruned > 0 {
		r.log.Infof("pruned %d expired history entries", pruned)
	}

	if err := r.store(kept); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	return nil
}

func (r *FileHistoryRepo) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e != nil && e.ID == id {
			return e, nil
		}
	}
	return nil, kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
}

func (r *FileHistoryRepo) List(ctx context.Context) ([]*domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i] != nil {
			out = append(out, entries[i])
		}
	}
	return out, nil
}
