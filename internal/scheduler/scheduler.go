// Package scheduler picks interview slots from a configured daily grid.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

// ErrNoSlot is returned when the lookahead window contains no usable slot
var ErrNoSlot = fmt.Errorf("NO_SLOT_AVAILABLE")

// InterviewLister provides the already-booked interviews used for conflict
// detection.
type InterviewLister interface {
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Interview, error)
}

// Scheduler finds the first free slot that is not in the past, not on a
// weekend, and does not overlap an existing interview for any of the
// requested interviewers.
type Scheduler struct {
	interviews    InterviewLister
	dailySlots    []string
	slotMinutes   int
	lookaheadDays int
	logger        logger.Logger
}

func New(interviews InterviewLister, dailySlots []string, slotMinutes, lookaheadDays int, log logger.Logger) *Scheduler {
	if len(dailySlots) == 0 {
		dailySlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	}
	if slotMinutes <= 0 {
		slotMinutes = 60
	}
	if lookaheadDays <= 0 {
		lookaheadDays = 14
	}
	return &Scheduler{
		interviews:    interviews,
		dailySlots:    dailySlots,
		slotMinutes:   slotMinutes,
		lookaheadDays: lookaheadDays,
		logger:        log,
	}
}

// FindSlot returns the first available slot at or after "from" for the given
// interviewers.
func (s *Scheduler) FindSlot(ctx context.Context, from time.Time, interviewers []string) (*models.TimeSlot, error) {
	if from.IsZero() {
		from = time.Now()
	}

	windowEnd := from.AddDate(0, 0, s.lookaheadDays)
	booked, err := s.interviews.ListScheduledBetween(ctx, from, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load booked interviews: %w", err)
	}

	slotDuration := time.Duration(s.slotMinutes) * time.Minute
	for day := 0; day < s.lookaheadDays; day++ {
		date := from.AddDate(0, 0, day)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		for _, hhmm := range s.dailySlots {
			start, err := slotStart(date, hhmm)
			if err != nil {
				return nil, fmt.Errorf("bad slot %q: %w", hhmm, err)
			}
			if start.Before(from) {
				continue
			}
			slot := models.TimeSlot{Start: start, End: start.Add(slotDuration)}
			if s.conflicts(slot, interviewers, booked) {
				continue
			}
			return &slot, nil
		}
	}

	s.logger.Warn("no interview slot available", map[string]interface{}{
		"from":          from,
		"lookaheadDays": s.lookaheadDays,
		"interviewers":  interviewers,
	})
	return nil, fmt.Errorf("%w: no free slot within %d days", ErrNoSlot, s.lookaheadDays)
}

// conflicts reports whether the slot overlaps a booked interview sharing at
// least one interviewer.
func (s *Scheduler) conflicts(slot models.TimeSlot, interviewers []string, booked []models.Interview) bool {
	for _, iv := range booked {
		ivEnd := iv.ScheduledAt.Add(time.Duration(iv.DurationMin) * time.Minute)
		if !slot.Start.Before(ivEnd) || !iv.ScheduledAt.Before(slot.End) {
			continue
		}
		if sharesInterviewer(interviewers, iv.Interviewers) {
			return true
		}
	}
	return false
}

func sharesInterviewer(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func slotStart(date time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
