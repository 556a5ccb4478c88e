// Package activity keeps a capped feed of automated agent actions.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

const (
	feedKey = "agents:activity"
	// Feed is a rolling window; older entries fall off
	defaultCap = 500
)

// Feed records what the background agents did, newest first
type Feed struct {
	redis  *redis.Client
	cap    int64
	logger logger.Logger
}

func NewFeed(client *redis.Client, capSize int, log logger.Logger) *Feed {
	if capSize <= 0 {
		capSize = defaultCap
	}
	return &Feed{redis: client, cap: int64(capSize), logger: log}
}

// Record appends one entry and trims the feed to its cap
func (f *Feed) Record(ctx context.Context, entry models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity entry: %w", err)
	}

	pipe := f.redis.TxPipeline()
	pipe.LPush(ctx, feedKey, data)
	pipe.LTrim(ctx, feedKey, 0, f.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (f *Feed) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || int64(limit) > f.cap {
		limit = int(f.cap)
	}

	raw, err := f.redis.LRange(ctx, feedKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity feed: %w", err)
	}

	entries := make([]models.ActivityEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.ActivityEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			f.logger.Warn("skipping malformed activity entry", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
