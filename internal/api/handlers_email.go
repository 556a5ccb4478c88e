package api

import (
	"context"
	"net/http"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/validation"
)

// EmailSender abstracts the mail transport so tests can fake SES.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

// EmailHandler sends ad-hoc recruiter emails through the configured transport
type EmailHandler struct {
	sender EmailSender
	from   string
	logger logger.Logger
}

func NewEmailHandler(sender EmailSender, from string, log logger.Logger) *EmailHandler {
	return &EmailHandler{sender: sender, from: from, logger: log}
}

func (h *EmailHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "send" && r.Method == http.MethodPost:
		h.Send(w, r)
	default:
		methodNotAllowed(w)
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.To == "" || req.Subject == "" || req.Body == "" {
		Error(w, validationError("to, subject, and body are required"))
		return
	}
	if !validation.ValidateEmail(req.To) {
		Error(w, validationError("to is not a valid address"))
		return
	}
	if h.sender == nil {
		Error(w, validationError("email transport is not configured"))
		return
	}

	messageID, err := h.sender.SendPlainEmail(r.Context(), h.from, req.To, req.Subject, req.Body)
	if err != nil {
		Error(w, err)
		return
	}

	h.logger.Info("email sent", map[string]interface{}{
		"to":        req.To,
		"messageId": messageID,
	})
	JSON(w, http.StatusAccepted, map[string]string{"messageId": messageID})
}
