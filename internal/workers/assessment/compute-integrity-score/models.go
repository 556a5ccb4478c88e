package computeintegrityscore

type Input struct {
	AssignmentID string `json:"assignmentId"`
}

type Output struct {
	AssignmentID   string         `json:"assignmentId"`
	IntegrityScore int            `json:"integrityScore"`
	EventCount     int            `json:"eventCount"`
	EventsByType   map[string]int `json:"eventsByType,omitempty"`
}
