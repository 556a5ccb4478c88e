package sendnotification

type Input struct {
	Recipient string                 `json:"recipient"`
	Phone     string                 `json:"phone,omitempty"`
	Type      string                 `json:"notificationType"`
	Priority  string                 `json:"priority,omitempty"`
	Subject   string                 `json:"subject,omitempty"`
	Body      string                 `json:"body,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Channels       []string `json:"channels"`
	MessageID      string   `json:"messageId,omitempty"`
	SMSMessageID   string   `json:"smsMessageId,omitempty"`
}
