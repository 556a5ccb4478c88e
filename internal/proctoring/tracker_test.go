package proctoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

func newTestTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewTracker(client, nil, logger.NewNoOpLogger()), mr
}

func TestTracker_RecordAndScore(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	events := []models.ProctoringEventType{
		models.ProctoringEventTabSwitch,      // -5
		models.ProctoringEventTabSwitch,      // -5
		models.ProctoringEventFullscreenExit, // -10
	}
	for _, typ := range events {
		err := tracker.Record(ctx, models.ProctoringEvent{
			AssignmentID: "assign-001",
			Type:         typ,
			OccurredAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	score, err := tracker.Score(ctx, "assign-001")
	assert.NoError(t, err)
	assert.Equal(t, 80, score)

	buffered, err := tracker.Events(ctx, "assign-001")
	assert.NoError(t, err)
	assert.Len(t, buffered, 3)
}

func TestTracker_ScoreFloorsAtZero(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := tracker.Record(ctx, models.ProctoringEvent{
			AssignmentID: "assign-002",
			Type:         models.ProctoringEventMultipleFaces, // -25 each
		})
		require.NoError(t, err)
	}

	score, err := tracker.Score(ctx, "assign-002")
	assert.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestTracker_CleanAssignmentScoresFull(t *testing.T) {
	tracker, _ := newTestTracker(t)

	score, err := tracker.Score(context.Background(), "never-seen")
	assert.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestTracker_RejectsUnknownEventType(t *testing.T) {
	tracker, _ := newTestTracker(t)

	err := tracker.Record(context.Background(), models.ProctoringEvent{
		AssignmentID: "assign-003",
		Type:         "yawning",
	})
	assert.Error(t, err)
}

func TestTracker_Clear(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Record(ctx, models.ProctoringEvent{
		AssignmentID: "assign-004",
		Type:         models.ProctoringEventFaceMissing,
	}))
	require.NoError(t, tracker.Clear(ctx, "assign-004"))

	score, err := tracker.Score(ctx, "assign-004")
	assert.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestTracker_CustomPenalties(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tracker := NewTracker(client, map[models.ProctoringEventType]int{
		models.ProctoringEventTabSwitch: 50,
	}, logger.NewNoOpLogger())

	ctx := context.Background()
	require.NoError(t, tracker.Record(ctx, models.ProctoringEvent{
		AssignmentID: "assign-005",
		Type:         models.ProctoringEventTabSwitch,
	}))

	score, err := tracker.Score(ctx, "assign-005")
	assert.NoError(t, err)
	assert.Equal(t, 50, score)
}

func TestTracker_EventsRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tracker := NewTracker(client, nil, logger.NewNoOpLogger())

	mock.ExpectLRange(keyPrefix+"assign-006", 0, -1).SetErr(errors.New("connection reset"))

	_, err := tracker.Events(context.Background(), "assign-006")
	assert.ErrorContains(t, err, "read proctoring events")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracker_ClearRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tracker := NewTracker(client, nil, logger.NewNoOpLogger())

	mock.ExpectDel(keyPrefix + "assign-007").SetErr(errors.New("connection reset"))

	err := tracker.Clear(context.Background(), "assign-007")
	assert.ErrorContains(t, err, "clear proctoring events")
	assert.NoError(t, mock.ExpectationsWereMet())
}
