package api

import (
	"net/http"

	"hiresphere-backend/internal/ai"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/store"
)

// AIHandler serves generation endpoints backed by the LLM client
type AIHandler struct {
	generator *ai.Generator
	offers    *store.OfferStore
	logger    logger.Logger
}

func NewAIHandler(generator *ai.Generator, offers *store.OfferStore, log logger.Logger) *AIHandler {
	return &AIHandler{generator: generator, offers: offers, logger: log}
}

func (h *AIHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "job-description" && r.Method == http.MethodPost:
		h.JobDescription(w, r)
	case len(parts) == 1 && parts[0] == "interview-questions" && r.Method == http.MethodPost:
		h.InterviewQuestions(w, r)
	case len(parts) == 1 && parts[0] == "offer-letter" && r.Method == http.MethodPost:
		h.OfferLetter(w, r)
	default:
		methodNotAllowed(w)
	}
}

type jobDescriptionRequest struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Requirements []string `json:"requirements"`
}

func (h *AIHandler) JobDescription(w http.ResponseWriter, r *http.Request) {
	var req jobDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Title == "" {
		Error(w, validationError("title is required"))
		return
	}

	description, err := h.generator.GenerateJobDescription(r.Context(), req.Title, req.Department, req.Requirements)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"description": description})
}

type interviewQuestionsRequest struct {
	Role  string `json:"role"`
	Focus string `json:"focus"`
	Count int    `json:"count"`
}

func (h *AIHandler) InterviewQuestions(w http.ResponseWriter, r *http.Request) {
	var req interviewQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Role == "" {
		Error(w, validationError("role is required"))
		return
	}
	if req.Focus == "" {
		req.Focus = req.Role
	}

	questions, err := h.generator.GenerateInterviewQuestions(r.Context(), req.Role, req.Focus, req.Count)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string][]string{"questions": questions})
}

type offerLetterRequest struct {
	CandidateName string `json:"candidateName"`
	OfferID       string `json:"offerId"`
}

func (h *AIHandler) OfferLetter(w http.ResponseWriter, r *http.Request) {
	var req offerLetterRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.CandidateName == "" || req.OfferID == "" {
		Error(w, validationError("candidateName and offerId are required"))
		return
	}

	offer, err := h.offers.Get(r.Context(), req.OfferID)
	if err != nil {
		Error(w, err)
		return
	}

	letter, err := h.generator.GenerateOfferLetter(r.Context(), req.CandidateName, offer)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"letter": letter})
}
