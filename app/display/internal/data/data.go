package data

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
	"github.com/iWorld-y/wellness_report/app/display/internal/repo"
)

// Data 数据层资源；db 为 nil 时历史记录使用 JSON 文件
type Data struct {
	db *sql.DB
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil || c.Database == nil || c.Database.Driver == "" {
		helper.Info("no database configured, using the file history store")
		return &Data{}, func() {}, nil
	}

	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	// Init schema for history
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS report_history (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			template TEXT NOT NULL,
			ctx JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init report_history table: %w", err)
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		db.Close()
	}
	return &Data{db: db}, cleanup, nil
}

// retention 解析保留时长，未配置或无效时为 90 天
func retention(c *conf.Data) time.Duration {
	if c == nil || c.History == nil || c.History.Retention == "" {
		return domain.DefaultRetention
	}
	d, err := time.ParseDuration(c.History.Retention)
	if err != nil || d <= 0 {
		return domain.DefaultRetention
	}
	return d
}

const defaultHistoryPath = "tmp/history.json"

// NewHistoryRepo 按配置选择数据库或文件实现
func NewHistoryRepo(data *Data, c *conf.Data, logger log.Logger) repo.HistoryRepo {
	if data != nil && data.db != nil {
		return newPgHistoryRepo(data.db, retention(c), logger)
	}
	path := defaultHistoryPath
	if c != nil && c.History != nil && c.History.Path != "" {
		path = c.History.Path
	}
	return NewFileHistoryRepo(path, retention(c), logger)
}
