package gradeassessment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/store"
)

func newFixture(t *testing.T, tracker *proctoring.Tracker) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), store.NewAssessmentStore(db), tracker, nil, logger.NewTestLogger(t))
	return h, mock
}

func expectAssignment(mock sqlmock.Sqlmock, id, assessmentID, answers string) {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "assessment_id", "application_id", "status", "answers", "score",
		"integrity_score", "device_check", "due_at", "started_at", "submitted_at",
		"created_at", "updated_at",
	}).AddRow(id, assessmentID, "app-1", "submitted", []byte(answers), nil,
		nil, nil, now.Add(24*time.Hour), now, now, now, now)
	mock.ExpectQuery(`SELECT .+ FROM test_assignments WHERE id = \$1`).
		WithArgs(id).WillReturnRows(rows)
}

func expectAssessment(mock sqlmock.Sqlmock, id string, passingScore int, questions string) {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "title", "skill", "duration_minutes", "passing_score",
		"questions", "proctoring", "created_at", "updated_at",
	}).AddRow(id, "Go Basics", "go", 45, passingScore,
		[]byte(questions), []byte(`{}`), now, now)
	mock.ExpectQuery(`SELECT .+ FROM assessments WHERE id = \$1`).
		WithArgs(id).WillReturnRows(rows)
}

const mcqQuestions = `[
	{"id":"q1","type":"multiple_choice","prompt":"?","answer":"A","points":1},
	{"id":"q2","type":"multiple_choice","prompt":"?","answer":"B","points":1},
	{"id":"q3","type":"coding","prompt":"?","points":5}
]`

func TestExecute_GradesAnswers(t *testing.T) {
	h, mock := newFixture(t, nil)

	expectAssignment(mock, "assign-1", "assess-1", `{"q1":"A","q2":"C","q3":"func main(){}"}`)
	expectAssessment(mock, "assess-1", 60, mcqQuestions)
	mock.ExpectExec(`UPDATE test_assignments`).
		WithArgs("assign-1", 50, 80, string(models.AssignmentStatusGraded),
			sqlmock.AnyArg(), string(models.AssignmentStatusSubmitted)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	integrity := 80
	output, err := h.Execute(context.Background(), &Input{AssignmentID: "assign-1", IntegrityScore: &integrity})
	require.NoError(t, err)

	assert.Equal(t, 50, output.Score)
	assert.Equal(t, 80, output.IntegrityScore)
	assert.Equal(t, 2, output.GradedQuestions)
	assert.False(t, output.Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PassesWithTrackerScore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tracker := proctoring.NewTracker(client, nil, logger.NewNoOpLogger())

	h, mock := newFixture(t, tracker)

	expectAssignment(mock, "assign-1", "assess-1", `{"q1":"a","q2":"B"}`)
	expectAssessment(mock, "assess-1", 60, mcqQuestions)
	mock.ExpectExec(`UPDATE test_assignments`).
		WithArgs("assign-1", 100, 100, string(models.AssignmentStatusGraded),
			sqlmock.AnyArg(), string(models.AssignmentStatusSubmitted)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{AssignmentID: "assign-1"})
	require.NoError(t, err)

	assert.Equal(t, 100, output.Score)
	assert.Equal(t, 100, output.IntegrityScore)
	assert.True(t, output.Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RejectsUnsubmittedAssignment(t *testing.T) {
	h, mock := newFixture(t, nil)

	expectAssignment(mock, "assign-1", "assess-1", `{}`)
	expectAssessment(mock, "assess-1", 60, mcqQuestions)
	mock.ExpectExec(`UPDATE test_assignments`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	integrity := 100
	_, err := h.Execute(context.Background(), &Input{AssignmentID: "assign-1", IntegrityScore: &integrity})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestExecute_MissingAssignmentID(t *testing.T) {
	h, _ := newFixture(t, nil)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGradingFailed)
}
