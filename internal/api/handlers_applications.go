package api

import (
	"context"
	"net/http"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// PipelineStarter kicks off the candidate evaluation workflow for a new
// application. A nil starter disables the async pipeline.
type PipelineStarter interface {
	CreateInstance(ctx context.Context, processID string, variables map[string]interface{}) error
}

const evaluationProcessID = "candidate-evaluation"

// ApplicationHandler serves the candidate pipeline endpoints
type ApplicationHandler struct {
	applications *store.ApplicationStore
	jobs         *store.JobStore
	pipeline     PipelineStarter
	logger       logger.Logger
}

func NewApplicationHandler(applications *store.ApplicationStore, jobs *store.JobStore, pipeline PipelineStarter, log logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		jobs:         jobs,
		pipeline:     pipeline,
		logger:       log,
	}
}

type applicationRequest struct {
	JobID          string `json:"jobId"`
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	CandidatePhone string `json:"candidatePhone"`
	ResumeText     string `json:"resumeText"`
	ResumeURL      string `json:"resumeUrl"`
	Source         string `json:"source"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *ApplicationHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Create(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.Transition(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "events" && r.Method == http.MethodGet:
		h.Events(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		Error(w, validationError("jobId query parameter is required"))
		return
	}
	status := models.ApplicationStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		Error(w, validationError("unknown application status %q", status))
		return
	}

	apps, err := h.applications.ListByJob(r.Context(), jobID, status)
	if err != nil {
		Error(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	JSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.JobID == "" || req.CandidateName == "" || req.CandidateEmail == "" {
		Error(w, validationError("jobId, candidateName, and candidateEmail are required"))
		return
	}

	// Applications are only accepted against active postings
	job, err := h.jobs.Get(r.Context(), req.JobID)
	if err != nil {
		Error(w, err)
		return
	}
	if job.Status != models.JobStatusActive {
		Error(w, validationError("job %s is not accepting applications", job.ID))
		return
	}

	app := &models.Application{
		JobID:          req.JobID,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		CandidatePhone: req.CandidatePhone,
		ResumeText:     req.ResumeText,
		ResumeURL:      req.ResumeURL,
		Source:         req.Source,
	}
	if err := h.applications.Create(r.Context(), app); err != nil {
		Error(w, err)
		return
	}

	// Kick off async parse + score. Failure to start the pipeline does not
	// fail the submission; the application can be scored later.
	if h.pipeline != nil {
		if err := h.pipeline.CreateInstance(r.Context(), evaluationProcessID, map[string]interface{}{
			"applicationId": app.ID,
			"jobId":         app.JobID,
		}); err != nil {
			h.logger.Warn("failed to start evaluation pipeline", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
		}
	}

	JSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	app, err := h.applications.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Transition(w http.ResponseWriter, r *http.Request, id string) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	to := models.ApplicationStatus(req.Status)
	if !to.IsValid() {
		Error(w, validationError("unknown application status %q", req.Status))
		return
	}

	actor := "system"
	if p, ok := PrincipalFromContext(r.Context()); ok {
		actor = p.Subject
	}

	app, err := h.applications.Transition(r.Context(), id, to, actor, req.Note)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Events(w http.ResponseWriter, r *http.Request, id string) {
	events, err := h.applications.Events(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if events == nil {
		events = []models.ApplicationEvent{}
	}
	JSON(w, http.StatusOK, events)
}
