package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newFileRepo(t *testing.T) *FileHistoryRepo {
	t.Helper()
	r := NewFileHistoryRepo(filepath.Join(t.TempDir(), "nested", "history.json"), domain.DefaultRetention, log.DefaultLogger)
	r.now = func() time.Time { return fixedNow }
	return r
}

func entry(id, createdAt string) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:        id,
		Title:     "title " + id,
		CreatedAt: createdAt,
		Type:      "pdf",
		Template:  "report.html",
		Ctx:       model.ReportContext{Brand: "onemore", Analysis: &model.Record{Person: model.Person{Name: "Ali"}}},
	}
}

func TestFileHistoryRepo_SaveGetList(t *testing.T) {
	ctx := context.Background()
	r := newFileRepo(t)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.Save(ctx, entry("a", "2024-05-30 10:00")))
	require.NoError(t, r.Save(ctx, entry("b", "2024-05-31 10:00")))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "title a", got.Title)
	require.NotNil(t, got.Ctx.Analysis)
	assert.Equal(t, "Ali", got.Ctx.Analysis.Person.Name.String())

	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestFileHistoryRepo_GetMissing(t *testing.T) {
	r := newFileRepo(t)
	_, err := r.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, kerrors.IsNotFound(err))
}

func TestFileHistoryRepo_PrunesOnWrite(t *testing.T) {
	ctx := context.Background()
	r := newFileRepo(t)

	require.NoError(t, r.store([]*domain.HistoryEntry{
		entry("old", "2024-01-01 10:00"),
		entry("weird", "geçen hafta"),
		entry("recent", "2024-05-01 10:00"),
	}))
	require.NoError(t, r.Save(ctx, entry("new", "2024-06-01 11:00")))

	list, err := r.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"new", "recent", "weird"}, ids)
}

func TestFileHistoryRepo_CorruptedFile(t *testing.T) {
	ctx := context.Background()
	r := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(r.path), 0o755))
	require.NoError(t, os.WriteFile(r.path, []byte("{not json"), 0o644))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.Save(ctx, entry("a", "2024-05-30 10:00")))
	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileHistoryRepo_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	r := newFileRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Save(ctx, entry(fmt.Sprintf("e%d", i), "2024-05-30 10:00")))
		}(i)
	}
	wg.Wait()

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestNewHistoryRepo_FileByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	repo := NewHistoryRepo(&Data{}, &conf.Data{History: &conf.History{Path: path, Retention: "24h"}}, log.DefaultLogger)

	fr, ok := repo.(*FileHistoryRepo)
	require.True(t, ok)
	assert.Equal(t, path, fr.path)
	assert.Equal(t, 24*time.Hour, fr.retention)
}

func TestRetention(t *testing.T) {
	assert.Equal(t, domain.DefaultRetention, retention(nil))
	assert.Equal(t, domain.DefaultRetention, retention(&conf.Data{History: &conf.History{Retention: "bad"}}))
	assert.Equal(t, time.Hour, retention(&conf.Data{History: &conf.History{Retention: "1h"}}))
}

func TestNewData_NoDatabase(t *testing.T) {
	d, cleanup, err := NewData(&conf.Data{}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, d.db)
}
