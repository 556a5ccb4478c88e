package models

// ParsedResume is the structured output of the resume parser
type ParsedResume struct {
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Skills     []string          `json:"skills"`
	Sections   map[string]string `json:"sections,omitempty"`
	YearsOfExp int               `json:"yearsOfExperience,omitempty"`
}

const (
	NotificationStatusChange      = "status_change"
	NotificationInterviewReminder = "interview_reminder"
	NotificationOfferSent         = "offer_sent"
)

// Notification records one outbound message to a candidate or hiring-team
// member.
type Notification struct {
	ID        string                 `json:"id"`
	Recipient string                 `json:"recipient"`
	Channel   string                 `json:"channel"` // "email", "sms"
	Type      string                 `json:"type"`    // "status_change", "interview_reminder", "offer_sent"
	Subject   string                 `json:"subject,omitempty"`
	Body      string                 `json:"body"`
	Status    string                 `json:"status"` // "sent", "failed"
	Payload   map[string]interface{} `json:"payload,omitempty"`
	SentAt    string                 `json:"sentAt,omitempty"`
}
