package api

import (
	"net/http"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/common/validation"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// ReferralHandler serves the employee referral program endpoints
type ReferralHandler struct {
	referrals *store.ReferralStore
	logger    logger.Logger
}

func NewReferralHandler(referrals *store.ReferralStore, log logger.Logger) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, logger: log}
}

func (h *ReferralHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Create(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.SetStatus(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

type referralRequest struct {
	ReferrerName   string `json:"referrerName"`
	ReferrerEmail  string `json:"referrerEmail"`
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	JobID          string `json:"jobId"`
	Relationship   string `json:"relationship"`
	Note           string `json:"note"`
}

func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	referrals, err := h.referrals.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	if referrals == nil {
		referrals = []models.Referral{}
	}
	JSON(w, http.StatusOK, referrals)
}

func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.ReferrerName == "" || req.CandidateName == "" || req.CandidateEmail == "" {
		Error(w, validationError("referrerName, candidateName, and candidateEmail are required"))
		return
	}
	if !validation.ValidateEmail(req.CandidateEmail) {
		Error(w, validationError("candidateEmail is not a valid address"))
		return
	}
	if req.ReferrerEmail != "" && !validation.ValidateEmail(req.ReferrerEmail) {
		Error(w, validationError("referrerEmail is not a valid address"))
		return
	}

	ref := &models.Referral{
		ReferrerName:   req.ReferrerName,
		ReferrerEmail:  req.ReferrerEmail,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		JobID:          req.JobID,
		Relationship:   req.Relationship,
		Note:           req.Note,
	}
	if err := h.referrals.Create(r.Context(), ref); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, ref)
}

func (h *ReferralHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	ref, err := h.referrals.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, ref)
}

type referralStatusRequest struct {
	Status      models.ReferralStatus `json:"status"`
	BonusAmount *int                  `json:"bonusAmount"`
}

func (h *ReferralHandler) SetStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req referralStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	switch req.Status {
	case models.ReferralStatusSubmitted, models.ReferralStatusReviewed,
		models.ReferralStatusHired, models.ReferralStatusRewarded, models.ReferralStatusClosed:
	default:
		Error(w, validationError("unknown referral status %q", req.Status))
		return
	}

	if req.BonusAmount != nil && *req.BonusAmount < 0 {
		Error(w, validationError("bonusAmount cannot be negative"))
		return
	}
	if err := h.referrals.SetStatus(r.Context(), id, req.Status, req.BonusAmount); err != nil {
		Error(w, err)
		return
	}
	ref, err := h.referrals.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, ref)
}
