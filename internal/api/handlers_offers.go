package api

import (
	"net/http"
	"time"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// OfferHandler serves offer lifecycle and approval chain endpoints
type OfferHandler struct {
	offers       *store.OfferStore
	applications *store.ApplicationStore
	logger       logger.Logger
}

func NewOfferHandler(offers *store.OfferStore, applications *store.ApplicationStore, log logger.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, applications: applications, logger: log}
}

func (h *OfferHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Create(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.Update(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "submit" && r.Method == http.MethodPost:
		h.SubmitForApproval(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "decision" && r.Method == http.MethodPost:
		h.Decide(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "send" && r.Method == http.MethodPost:
		h.Send(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "respond" && r.Method == http.MethodPost:
		h.Respond(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

type offerRequest struct {
	ApplicationID string            `json:"applicationId"`
	JobTitle      string            `json:"jobTitle"`
	BaseSalary    int               `json:"baseSalary"`
	Bonus         int               `json:"bonus"`
	EquityShares  int               `json:"equityShares"`
	Currency      string            `json:"currency"`
	StartDate     string            `json:"startDate"`
	ExpiresAt     string            `json:"expiresAt"`
	Approvers     []models.Approver `json:"approvers"`
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	applicationID := r.URL.Query().Get("applicationId")
	if applicationID == "" {
		Error(w, validationError("applicationId query parameter is required"))
		return
	}
	offers, err := h.offers.ListByApplication(r.Context(), applicationID)
	if err != nil {
		Error(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	JSON(w, http.StatusOK, offers)
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.ApplicationID == "" || req.JobTitle == "" || req.BaseSalary <= 0 {
		Error(w, validationError("applicationId, jobTitle, and a positive baseSalary are required"))
		return
	}

	// Offers attach to applications at the offer stage
	app, err := h.applications.Get(r.Context(), req.ApplicationID)
	if err != nil {
		Error(w, err)
		return
	}
	if app.Status != models.ApplicationStatusOffer {
		Error(w, validationError("application %s is at %s, not offer stage", app.ID, app.Status))
		return
	}

	offer := &models.Offer{
		ApplicationID: req.ApplicationID,
		JobTitle:      req.JobTitle,
		BaseSalary:    req.BaseSalary,
		Bonus:         req.Bonus,
		EquityShares:  req.EquityShares,
		Currency:      req.Currency,
		Approvers:     req.Approvers,
	}
	if req.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			Error(w, validationError("startDate must be RFC3339"))
			return
		}
		offer.StartDate = &parsed
	}
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			Error(w, validationError("expiresAt must be RFC3339"))
			return
		}
		offer.ExpiresAt = &parsed
	}

	if err := h.offers.Create(r.Context(), offer); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, offer)
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, offer)
}

// Update edits compensation fields while the offer is still a draft
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if offer.Status != models.OfferStatusDraft {
		Error(w, validationError("offer %s is %s; only drafts can be edited", id, offer.Status))
		return
	}

	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.JobTitle != "" {
		offer.JobTitle = req.JobTitle
	}
	if req.BaseSalary > 0 {
		offer.BaseSalary = req.BaseSalary
	}
	offer.Bonus = req.Bonus
	offer.EquityShares = req.EquityShares
	if req.Currency != "" {
		offer.Currency = req.Currency
	}
	if req.Approvers != nil {
		for i := range req.Approvers {
			if req.Approvers[i].Decision == "" {
				req.Approvers[i].Decision = models.ApproverPending
			}
		}
		offer.Approvers = req.Approvers
	}

	if err := h.offers.Update(r.Context(), offer); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, offer)
}

// SubmitForApproval moves a draft into the approval chain. Offers without
// approvers cannot be submitted.
func (h *OfferHandler) SubmitForApproval(w http.ResponseWriter, r *http.Request, id string) {
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if len(offer.Approvers) == 0 {
		Error(w, validationError("offer %s has no approvers", id))
		return
	}

	offer, err = h.offers.Transition(r.Context(), id, models.OfferStatusPendingApproval)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, offer)
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

func (h *OfferHandler) Decide(w http.ResponseWriter, r *http.Request, id string) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	p, ok := PrincipalFromContext(r.Context())
	if !ok || p.Email == "" {
		Error(w, validationError("approver identity unavailable"))
		return
	}

	decision := models.ApproverRejected
	if req.Approve {
		decision = models.ApproverApproved
	}

	offer, err := h.offers.RecordDecision(r.Context(), id, p.Email, decision, req.Comment)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, offer)
}

func (h *OfferHandler) Send(w http.ResponseWriter, r *http.Request, id string) {
	offer, err := h.offers.Transition(r.Context(), id, models.OfferStatusSent)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, offer)
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// Respond records the candidate's answer; acceptance advances the linked
// application to hired.
func (h *OfferHandler) Respond(w http.ResponseWriter, r *http.Request, id string) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	to := models.OfferStatusDeclined
	if req.Accept {
		to = models.OfferStatusAccepted
	}

	offer, err := h.offers.Transition(r.Context(), id, to)
	if err != nil {
		Error(w, err)
		return
	}

	if req.Accept {
		if _, err := h.applications.Transition(r.Context(), offer.ApplicationID,
			models.ApplicationStatusHired, "candidate", "offer accepted"); err != nil {
			h.logger.Warn("offer accepted but application transition failed", map[string]interface{}{
				"offerId":       offer.ID,
				"applicationId": offer.ApplicationID,
				"error":         err.Error(),
			})
		}
	}
	JSON(w, http.StatusOK, offer)
}
