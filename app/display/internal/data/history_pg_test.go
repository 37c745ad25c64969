package data

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/wellness_report/app/display/internal/domain"
)

var historyColumns = []string{"id", "title", "type", "template", "ctx", "created_at"}

// sameTime 按时间点比较参数，忽略时区表示差异
type sameTime time.Time

func (a sameTime) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	return ok && t.Equal(time.Time(a))
}

func newPgRepo(t *testing.T) (*pgHistoryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := newPgHistoryRepo(db, domain.DefaultRetention, log.DefaultLogger)
	r.now = func() time.Time { return fixedNow }
	return r, mock
}

func TestPgHistoryRepo_SaveInsertsAndPrunes(t *testing.T) {
	r, mock := newPgRepo(t)
	e := entry("pdf_1", "2024-05-31 09:30")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_history")).
		WithArgs("pdf_1", "title pdf_1", "pdf", "report.html", sqlmock.AnyArg(),
			sameTime(time.Date(2024, 5, 31, 9, 30, 0, 0, time.UTC))).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_history WHERE created_at < $1")).
		WithArgs(sameTime(fixedNow.Add(-domain.DefaultRetention))).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, r.Save(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgHistoryRepo_SaveUnparsableDateUsesNow(t *testing.T) {
	r, mock := newPgRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_history")).
		WithArgs("pdf_2", "title pdf_2", "pdf", "report.html", sqlmock.AnyArg(), sameTime(fixedNow)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_history")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, r.Save(context.Background(), entry("pdf_2", "dün")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgHistoryRepo_SaveRollsBackOnPruneFailure(t *testing.T) {
	r, mock := newPgRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_history")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := r.Save(context.Background(), entry("pdf_3", "2024-05-31 09:30"))
	assert.ErrorContains(t, err, "prune history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgHistoryRepo_Get(t *testing.T) {
	r, mock := newPgRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_history WHERE id = $1")).
		WithArgs("pdf_1").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(
			"pdf_1", "Ali", "pdf", "report.html",
			[]byte(`{"brand":"onemore","analysis":{"kisi_bilgileri":{"ad_soyad":"Ali"}}}`),
			time.Date(2024, 5, 31, 9, 30, 45, 0, time.UTC),
		))

	got, err := r.Get(context.Background(), "pdf_1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31 09:30", got.CreatedAt)
	assert.Equal(t, "onemore", got.Ctx.Brand)
	require.NotNil(t, got.Ctx.Analysis)
	assert.Equal(t, "Ali", got.Ctx.Analysis.Person.Name.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgHistoryRepo_GetMissing(t *testing.T) {
	r, mock := newPgRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_history WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(historyColumns))

	_, err := r.Get(context.Background(), "nope")
	assert.True(t, kerrors.IsNotFound(err), "err = %v", err)
}

func TestPgHistoryRepo_ListAndCorruptCtx(t *testing.T) {
	r, mock := newPgRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("cmp_2", "b", "complaint", "complaint_report.html", []byte(`{}`), time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)).
			AddRow("pdf_1", "a", "pdf", "report.html", []byte(`{}`), time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cmp_2", list[0].ID)
	assert.Equal(t, "pdf_1", list[1].ID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("pdf_x", "x", "pdf", "report.html", []byte(`not json`), fixedNow))
	_, err = r.Get(context.Background(), "pdf_x")
	assert.ErrorContains(t, err, "decode ctx of pdf_x")
}
