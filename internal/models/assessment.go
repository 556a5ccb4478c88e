package models

import "time"

// AssignmentStatus represents a candidate's progress through a test assignment
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusSubmitted  AssignmentStatus = "submitted"
	AssignmentStatusGraded     AssignmentStatus = "graded"
	AssignmentStatusExpired    AssignmentStatus = "expired"
)

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusAssigned:   {AssignmentStatusInProgress, AssignmentStatusExpired},
	AssignmentStatusInProgress: {AssignmentStatusSubmitted, AssignmentStatusExpired},
	AssignmentStatusSubmitted:  {AssignmentStatusGraded},
	AssignmentStatusGraded:     {},
	AssignmentStatusExpired:    {},
}

// CanTransition reports whether the assignment may move to the given status
func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValid reports whether the status is a known value
func (s AssignmentStatus) IsValid() bool {
	_, ok := assignmentTransitions[s]
	return ok
}

// Question is a single assessment question
type Question struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // "multiple_choice", "coding", "free_text"
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`
	Points  int      `json:"points"`
}

// ProctoringConfig controls monitoring during an assessment
type ProctoringConfig struct {
	RequireWebcam     bool `json:"requireWebcam"`
	RequireMic        bool `json:"requireMic"`
	RequireFullscreen bool `json:"requireFullscreen"`
	MaxTabSwitches    int  `json:"maxTabSwitches"`
}

// Assessment is a reusable test definition
type Assessment struct {
	ID              string           `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	Skill           string           `json:"skill,omitempty" db:"skill"`
	DurationMinutes int              `json:"durationMinutes" db:"duration_minutes"`
	PassingScore    int              `json:"passingScore" db:"passing_score"`
	Questions       []Question       `json:"questions" db:"questions"`
	Proctoring      ProctoringConfig `json:"proctoring" db:"proctoring"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// TestAssignment links an assessment to one application
type TestAssignment struct {
	ID             string            `json:"id" db:"id"`
	AssessmentID   string            `json:"assessmentId" db:"assessment_id"`
	ApplicationID  string            `json:"applicationId" db:"application_id"`
	Status         AssignmentStatus  `json:"status" db:"status"`
	Answers        map[string]string `json:"answers,omitempty" db:"answers"`
	Score          *int              `json:"score,omitempty" db:"score"`
	IntegrityScore *int              `json:"integrityScore,omitempty" db:"integrity_score"`
	DeviceCheck    *DeviceCheck      `json:"deviceCheck,omitempty" db:"device_check"`
	DueAt          time.Time         `json:"dueAt" db:"due_at"`
	StartedAt      *time.Time        `json:"startedAt,omitempty" db:"started_at"`
	SubmittedAt    *time.Time        `json:"submittedAt,omitempty" db:"submitted_at"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// DeviceCheck records the pre-test environment checks. All four must pass
// before an assignment may start.
type DeviceCheck struct {
	Internet   bool      `json:"internet"`
	Webcam     bool      `json:"webcam"`
	Microphone bool      `json:"microphone"`
	Fullscreen bool      `json:"fullscreen"`
	CheckedAt  time.Time `json:"checkedAt"`
}

// Passed reports whether every check succeeded
func (d *DeviceCheck) Passed() bool {
	if d == nil {
		return false
	}
	return d.Internet && d.Webcam && d.Microphone && d.Fullscreen
}

// ProctoringEventType identifies a suspicious event observed during a test
type ProctoringEventType string

const (
	ProctoringEventTabSwitch      ProctoringEventType = "tab_switch"
	ProctoringEventFullscreenExit ProctoringEventType = "fullscreen_exit"
	ProctoringEventFaceMissing    ProctoringEventType = "face_missing"
	ProctoringEventMultipleFaces  ProctoringEventType = "multiple_faces"
)

// IsValid reports whether the event type is recognized
func (t ProctoringEventType) IsValid() bool {
	switch t {
	case ProctoringEventTabSwitch, ProctoringEventFullscreenExit,
		ProctoringEventFaceMissing, ProctoringEventMultipleFaces:
		return true
	}
	return false
}

// ProctoringEvent is one observation reported while a test runs
type ProctoringEvent struct {
	AssignmentID string              `json:"assignmentId"`
	Type         ProctoringEventType `json:"type"`
	OccurredAt   time.Time           `json:"occurredAt"`
	Details      string              `json:"details,omitempty"`
}
