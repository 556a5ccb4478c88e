package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/store"
)

func assignmentRows(deviceCheck interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "assessment_id", "application_id", "status", "answers", "score",
		"integrity_score", "device_check", "due_at", "started_at", "submitted_at",
		"created_at", "updated_at",
	}).AddRow(
		"assign-1", "assess-1", "app-1", "assigned", []byte(`{}`), nil,
		nil, deviceCheck, now.Add(48*time.Hour), nil, nil, now, now,
	)
}

func newAssessmentFixture(t *testing.T) (*AssessmentHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewAssessmentHandler(store.NewAssessmentStore(db), nil, nil, testLogger(t))
	return h, mock
}

func TestAssessmentStart_RequiresDeviceCheck(t *testing.T) {
	h, mock := newAssessmentFixture(t)

	mock.ExpectQuery("SELECT(.|\n)*FROM test_assignments").
		WithArgs("assign-1").
		WillReturnRows(assignmentRows(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assignments/assign-1/start", nil)
	h.Start(rec, req, "assign-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "DEVICE_CHECK_INCOMPLETE")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentStart_FailedWebcamBlocks(t *testing.T) {
	h, mock := newAssessmentFixture(t)

	check := []byte(`{"internet":true,"webcam":false,"microphone":true,"fullscreen":true}`)
	mock.ExpectQuery("SELECT(.|\n)*FROM test_assignments").
		WithArgs("assign-1").
		WillReturnRows(assignmentRows(check))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assignments/assign-1/start", nil)
	h.Start(rec, req, "assign-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "DEVICE_CHECK_INCOMPLETE")
}

func TestAssessmentStart_AllChecksPass(t *testing.T) {
	h, mock := newAssessmentFixture(t)

	check := []byte(`{"internet":true,"webcam":true,"microphone":true,"fullscreen":true}`)
	mock.ExpectQuery("SELECT(.|\n)*FROM test_assignments").
		WithArgs("assign-1").
		WillReturnRows(assignmentRows(check))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT(.|\n)*FOR UPDATE").
		WithArgs("assign-1").
		WillReturnRows(assignmentRows(check))
	mock.ExpectExec("UPDATE test_assignments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assignments/assign-1/start", nil)
	h.Start(rec, req, "assign-1")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentCreate_RequiresQuestions(t *testing.T) {
	h, _ := newAssessmentFixture(t)

	body, _ := json.Marshal(map[string]interface{}{"title": "Go Screen"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader(body))
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
