package models

import "time"

// InterviewStatus represents the state of a scheduled interview
type InterviewStatus string

const (
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusCancelled InterviewStatus = "cancelled"
	InterviewStatusNoShow    InterviewStatus = "no_show"
)

// Interview represents a scheduled interview round
type Interview struct {
	ID            string          `json:"id" db:"id"`
	ApplicationID string          `json:"applicationId" db:"application_id"`
	Round         string          `json:"round,omitempty" db:"round"` // "screening", "technical", "final"
	ScheduledAt   time.Time       `json:"scheduledAt" db:"scheduled_at"`
	DurationMin   int             `json:"durationMinutes" db:"duration_minutes"`
	Interviewers  []string        `json:"interviewers" db:"interviewers"`
	MeetingLink   string          `json:"meetingLink,omitempty" db:"meeting_link"`
	KitID         string          `json:"kitId,omitempty" db:"kit_id"`
	Status        InterviewStatus `json:"status" db:"status"`
	FeedbackScore *int            `json:"feedbackScore,omitempty" db:"feedback_score"`
	FeedbackNotes string          `json:"feedbackNotes,omitempty" db:"feedback_notes"`
	ReminderSent  bool            `json:"reminderSent" db:"reminder_sent"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// InterviewKit is a reusable question guide attached to an interview round
type InterviewKit struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role,omitempty" db:"role"`
	Questions []string  `json:"questions" db:"questions"`
	Rubric    string    `json:"rubric,omitempty" db:"rubric"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TimeSlot is a candidate slot produced by the scheduler
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
