package gradeassessment

type Input struct {
	AssignmentID string `json:"assignmentId"`
	// IntegrityScore carries the result of a preceding compute-integrity-score
	// task; when absent the proctoring tracker is consulted directly.
	IntegrityScore *int `json:"integrityScore,omitempty"`
}

type Output struct {
	AssignmentID    string `json:"assignmentId"`
	Score           int    `json:"score"`
	IntegrityScore  int    `json:"integrityScore"`
	Passed          bool   `json:"passed"`
	GradedQuestions int    `json:"gradedQuestions"`
}
