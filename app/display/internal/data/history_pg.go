package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
)

type pgHistoryRepo struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
	log       *log.Helper
}

func newPgHistoryRepo(db *sql.DB, retention time.Duration, logger log.Logger) *pgHistoryRepo {
	return &pgHistoryRepo{
		db:        db,
		retention: retention,
		now:       time.Now,
		log:       log.NewHelper(logger),
	}
}

func (r *pgHistoryRepo) Save(ctx context.Context, e *domain.HistoryEntry) error {
	payload, err := json.Marshal(e.Ctx)
	if err != nil {
		return fmt.Errorf("marshal ctx: %w", err)
	}
	createdAt, ok := domain.ParseCreatedAt(e.CreatedAt)
	if !ok {
		createdAt = r.now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO report_history (id, title, type, template, ctx, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Title, e.Type, e.Template, payload, createdAt,
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM report_history WHERE created_at < $1`,
		r.now().UTC().Add(-r.retention),
	)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.log.Infof("pruned %d expired history entries", n)
	}
	return tx.Commit()
}

func (r *pgHistoryRepo) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, type, template, ctx, created_at FROM report_history WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.NotFound("REPORT_NOT_FOUND", "report not found")
	}
	return e, err
}

func (r *pgHistoryRepo) List(ctx context.Context) ([]*domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, type, template, ctx, created_at FROM report_history ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*domain.HistoryEntry, error) {
	var (
		e         domain.HistoryEntry
		payload   []byte
		createdAt time.Time
	)
	if err := s.Scan(&e.ID, &e.Title, &e.Type, &e.Template, &payload, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &e.Ctx); err != nil {
		return nil, fmt.Errorf("decode ctx of %s: %w", e.ID, err)
	}
	e.CreatedAt = createdAt.UTC().Format(domain.CreatedAtLayout)
	return &e, nil
}
