package api

import (
	"net/http"
	"strconv"

	"hiresphere-backend/internal/activity"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

// AgentHandler exposes the background agent activity feed
type AgentHandler struct {
	feed   *activity.Feed
	logger logger.Logger
}

func NewAgentHandler(feed *activity.Feed, log logger.Logger) *AgentHandler {
	return &AgentHandler{feed: feed, logger: log}
}

func (h *AgentHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "activity" && r.Method == http.MethodGet:
		h.Activity(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *AgentHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			Error(w, validationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.feed.Recent(r.Context(), limit)
	if err != nil {
		Error(w, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	JSON(w, http.StatusOK, entries)
}
