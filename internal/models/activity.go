package models

import "time"

// ActivityEntry is one item in the agent activity feed
type ActivityEntry struct {
	ID         string                 `json:"id"`
	Agent      string                 `json:"agent"` // "resume-parser", "scorer", "sourcer", "scheduler"
	Action     string                 `json:"action"`
	EntityType string                 `json:"entityType,omitempty"`
	EntityID   string                 `json:"entityId,omitempty"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}
