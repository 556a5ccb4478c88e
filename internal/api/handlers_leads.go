package api

import (
	"net/http"
	"strconv"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/validation"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/search"
	"hiresphere-backend/internal/store"
)

// LeadHandler serves sourced candidate leads. Free-text queries go through
// the search index; plain listings come from Postgres.
type LeadHandler struct {
	leads  *store.LeadStore
	index  *search.LeadIndex
	logger logger.Logger
}

func NewLeadHandler(leads *store.LeadStore, index *search.LeadIndex, log logger.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, index: index, logger: log}
}

func (h *LeadHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Upsert(w, r)
	case len(parts) == 1 && parts[0] == "search" && r.Method == http.MethodGet:
		h.Search(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "contacted" && r.Method == http.MethodPost:
		h.MarkContacted(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("q")
	platform := q.Get("platform")

	if text != "" && h.index != nil {
		size := 0
		if raw := q.Get("limit"); raw != "" {
			size, _ = strconv.Atoi(raw)
		}
		leads, err := h.index.Query(r.Context(), text, platform, size)
		if err != nil {
			h.logger.Warn("lead search failed, falling back to database listing", map[string]interface{}{
				"query": text,
				"error": err.Error(),
			})
		} else {
			JSON(w, http.StatusOK, leads)
			return
		}
	}

	leads, err := h.leads.List(r.Context(), platform)
	if err != nil {
		Error(w, err)
		return
	}
	if leads == nil {
		leads = []models.CandidateLead{}
	}
	JSON(w, http.StatusOK, leads)
}

// Search runs a full-text query against the lead index
func (h *LeadHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("q")
	if text == "" {
		Error(w, validationError("q query parameter is required"))
		return
	}
	if h.index == nil {
		Error(w, validationError("lead search index is not configured"))
		return
	}

	size := 0
	if raw := q.Get("limit"); raw != "" {
		size, _ = strconv.Atoi(raw)
	}
	leads, err := h.index.Query(r.Context(), text, q.Get("platform"), size)
	if err != nil {
		Error(w, err)
		return
	}
	if leads == nil {
		leads = []models.CandidateLead{}
	}
	JSON(w, http.StatusOK, leads)
}

type leadRequest struct {
	Name       string   `json:"name"`
	Headline   string   `json:"headline"`
	Platform   string   `json:"platform"`
	ProfileURL string   `json:"profileUrl"`
	Location   string   `json:"location"`
	Skills     []string `json:"skills"`
	Email      string   `json:"email"`
}

// Upsert stores a lead keyed by profile URL and mirrors it into the search
// index on a best-effort basis.
func (h *LeadHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Name == "" || req.Platform == "" || req.ProfileURL == "" {
		Error(w, validationError("name, platform, and profileUrl are required"))
		return
	}
	if !validation.ValidateURL(req.ProfileURL) {
		Error(w, validationError("profileUrl is not a valid URL"))
		return
	}

	lead := &models.CandidateLead{
		Name:       req.Name,
		Headline:   req.Headline,
		Platform:   req.Platform,
		ProfileURL: req.ProfileURL,
		Location:   req.Location,
		Skills:     req.Skills,
		Email:      req.Email,
	}
	if err := h.leads.Upsert(r.Context(), lead); err != nil {
		Error(w, err)
		return
	}

	if h.index != nil {
		if err := h.index.Index(r.Context(), lead); err != nil {
			h.logger.Warn("lead indexing failed", map[string]interface{}{
				"leadId": lead.ID,
				"error":  err.Error(),
			})
		}
	}
	JSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	lead, err := h.leads.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) MarkContacted(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.leads.MarkContacted(r.Context(), id); err != nil {
		Error(w, err)
		return
	}
	lead, err := h.leads.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, lead)
}
