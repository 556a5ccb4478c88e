// Package proctoring buffers in-test monitoring events and computes
// integrity scores from them.
package proctoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/metrics"
	"hiresphere-backend/internal/models"
)

const (
	keyPrefix = "proctoring:events:"
	// Events are buffered for the assessment window plus review slack
	eventTTL = 48 * time.Hour
	// Cap per assignment so a runaway client cannot grow the list unbounded
	maxEvents = 1000
)

// DefaultPenalties is the per-event integrity deduction applied when the
// configuration does not override it.
var DefaultPenalties = map[models.ProctoringEventType]int{
	models.ProctoringEventTabSwitch:      5,
	models.ProctoringEventFullscreenExit: 10,
	models.ProctoringEventFaceMissing:    15,
	models.ProctoringEventMultipleFaces:  25,
}

// Tracker records proctoring events in Redis and scores them
type Tracker struct {
	redis     *redis.Client
	penalties map[models.ProctoringEventType]int
	logger    logger.Logger
}

func NewTracker(client *redis.Client, penalties map[models.ProctoringEventType]int, log logger.Logger) *Tracker {
	if len(penalties) == 0 {
		penalties = DefaultPenalties
	}
	return &Tracker{
		redis:     client,
		penalties: penalties,
		logger:    log,
	}
}

// Record buffers one event for the assignment. Unknown event types are
// rejected.
func (t *Tracker) Record(ctx context.Context, event models.ProctoringEvent) error {
	if !event.Type.IsValid() {
		return fmt.Errorf("unknown proctoring event type: %s", event.Type)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal proctoring event: %w", err)
	}

	key := keyPrefix + event.AssignmentID
	pipe := t.redis.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxEvents-1)
	pipe.Expire(ctx, key, eventTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("buffer proctoring event: %w", err)
	}

	metrics.ProctoringEventsIngested.WithLabelValues(string(event.Type)).Inc()
	t.logger.Debug("proctoring event recorded", map[string]interface{}{
		"assignmentId": event.AssignmentID,
		"type":         event.Type,
	})
	return nil
}

// Events returns the buffered events for an assignment, newest first
func (t *Tracker) Events(ctx context.Context, assignmentID string) ([]models.ProctoringEvent, error) {
	raw, err := t.redis.LRange(ctx, keyPrefix+assignmentID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read proctoring events: %w", err)
	}

	events := make([]models.ProctoringEvent, 0, len(raw))
	for _, item := range raw {
		var ev models.ProctoringEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			t.logger.Warn("skipping malformed proctoring event", map[string]interface{}{
				"assignmentId": assignmentID,
				"error":        err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Score computes the integrity score for an assignment: 100 minus the sum of
// per-event penalties, floored at zero.
func (t *Tracker) Score(ctx context.Context, assignmentID string) (int, error) {
	events, err := t.Events(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	return t.ScoreEvents(events), nil
}

// ScoreEvents applies the penalty table to an event list
func (t *Tracker) ScoreEvents(events []models.ProctoringEvent) int {
	score := 100
	for _, ev := range events {
		score -= t.penalties[ev.Type]
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Clear drops the buffered events for an assignment after grading
func (t *Tracker) Clear(ctx context.Context, assignmentID string) error {
	if err := t.redis.Del(ctx, keyPrefix+assignmentID).Err(); err != nil {
		return fmt.Errorf("clear proctoring events: %w", err)
	}
	return nil
}
