package exporthiringreport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/store"
)

func newFixture(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := LoadConfig()
	cfg.OutputDir = t.TempDir()
	h := NewHandler(cfg, store.NewReportStore(db), nil, logger.NewTestLogger(t))
	return h, mock
}

func pipelineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "status", "applications", "applied", "shortlisted",
		"assessment", "interview", "offer", "hired", "rejected", "avg_match_score",
	}).
		AddRow("job-1", "Backend Engineer", "published", 10, 3, 2, 2, 1, 1, 1, 0, 72.5).
		AddRow("job-2", "Designer", "draft", 0, 0, 0, 0, 0, 0, 0, 0, 0.0)
}

func assessmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"job_id", "graded", "passed"}).
		AddRow("job-1", 4, 3)
}

func TestExecute_WritesWorkbook(t *testing.T) {
	h, mock := newFixture(t)

	mock.ExpectQuery(`SELECT j.id, j.title, j.status`).WillReturnRows(pipelineRows())
	mock.ExpectQuery(`SELECT ap.job_id`).WillReturnRows(assessmentRows())

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 2, output.JobCount)
	assert.Equal(t, ".xlsx", filepath.Ext(output.Path))

	f, err := excelize.OpenFile(output.Path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(summarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", title)

	passRate, err := f.GetCellValue(summarySheet, "M2")
	require.NoError(t, err)
	assert.Equal(t, "75%", passRate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_HonorsRequestedPath(t *testing.T) {
	h, mock := newFixture(t)

	mock.ExpectQuery(`SELECT j.id, j.title, j.status`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "status", "applications", "applied", "shortlisted",
			"assessment", "interview", "offer", "hired", "rejected", "avg_match_score",
		}))
	mock.ExpectQuery(`SELECT ap.job_id`).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "graded", "passed"}))

	requested := filepath.Join(t.TempDir(), "report")
	output, err := h.Execute(context.Background(), &Input{OutputPath: requested})
	require.NoError(t, err)

	assert.Equal(t, requested+".xlsx", output.Path)
	assert.Zero(t, output.JobCount)
}

func TestExecute_StatsQueryFailure(t *testing.T) {
	h, mock := newFixture(t)

	mock.ExpectQuery(`SELECT j.id, j.title, j.status`).
		WillReturnError(assert.AnError)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportExportFailed)
}
