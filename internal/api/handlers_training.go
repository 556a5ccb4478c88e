package api

import (
	"net/http"
	"time"

	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// TrainingHandler serves onboarding modules and per-hire training plans
type TrainingHandler struct {
	training     *store.TrainingStore
	applications *store.ApplicationStore
	integrations []config.LMSIntegration
	logger       logger.Logger
}

func NewTrainingHandler(training *store.TrainingStore, applications *store.ApplicationStore, integrations []config.LMSIntegration, log logger.Logger) *TrainingHandler {
	return &TrainingHandler{
		training:     training,
		applications: applications,
		integrations: integrations,
		logger:       log,
	}
}

// RouteLMS lists the learning-platform connectors configured for onboarding
func (h *TrainingHandler) RouteLMS(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "integrations" && r.Method == http.MethodGet:
		integrations := h.integrations
		if integrations == nil {
			integrations = []config.LMSIntegration{}
		}
		JSON(w, http.StatusOK, integrations)
	default:
		methodNotAllowed(w)
	}
}

func (h *TrainingHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "modules" && r.Method == http.MethodGet:
		h.ListModules(w, r)
	case len(parts) == 1 && parts[0] == "modules" && r.Method == http.MethodPost:
		h.CreateModule(w, r)
	case len(parts) == 1 && parts[0] == "hires" && r.Method == http.MethodGet:
		h.ListHires(w, r)
	case len(parts) == 1 && parts[0] == "hires" && r.Method == http.MethodPost:
		h.Enroll(w, r)
	case len(parts) == 2 && parts[0] == "hires" && r.Method == http.MethodGet:
		h.GetHire(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "hires" && parts[2] == "complete" && r.Method == http.MethodPost:
		h.Complete(w, r, parts[1])
	default:
		methodNotAllowed(w)
	}
}

type moduleRequest struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"durationMinutes"`
	ContentURL      string `json:"contentUrl"`
	Mandatory       bool   `json:"mandatory"`
}

func (h *TrainingHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.training.ListModules(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	if modules == nil {
		modules = []models.TrainingModule{}
	}
	JSON(w, http.StatusOK, modules)
}

func (h *TrainingHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req moduleRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Title == "" {
		Error(w, validationError("title is required"))
		return
	}

	m := &models.TrainingModule{
		Title:           req.Title,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		ContentURL:      req.ContentURL,
		Mandatory:       req.Mandatory,
	}
	if err := h.training.CreateModule(r.Context(), m); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, m)
}

type enrollRequest struct {
	ApplicationID string   `json:"applicationId"`
	HireName      string   `json:"hireName"`
	HireEmail     string   `json:"hireEmail"`
	ModuleIDs     []string `json:"moduleIds"`
	StartDate     string   `json:"startDate"`
}

// trainingView decorates a plan with its computed progress
type trainingView struct {
	*models.NewHireTraining
	ProgressPct int  `json:"progressPct"`
	Complete    bool `json:"complete"`
}

func viewOf(t *models.NewHireTraining) trainingView {
	return trainingView{NewHireTraining: t, ProgressPct: t.Progress(), Complete: t.IsComplete()}
}

func (h *TrainingHandler) ListHires(w http.ResponseWriter, r *http.Request) {
	trainings, err := h.training.ListHireTrainings(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	views := make([]trainingView, 0, len(trainings))
	for i := range trainings {
		views = append(views, viewOf(&trainings[i]))
	}
	JSON(w, http.StatusOK, views)
}

// Enroll creates a training plan for a hired candidate. When moduleIds is
// omitted every mandatory module is assigned.
func (h *TrainingHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.ApplicationID == "" || req.HireName == "" || req.HireEmail == "" {
		Error(w, validationError("applicationId, hireName, and hireEmail are required"))
		return
	}

	app, err := h.applications.Get(r.Context(), req.ApplicationID)
	if err != nil {
		Error(w, err)
		return
	}
	if app.Status != models.ApplicationStatusHired {
		Error(w, validationError("application %s is %s; only hired candidates can be enrolled", app.ID, app.Status))
		return
	}

	moduleIDs := req.ModuleIDs
	if len(moduleIDs) == 0 {
		modules, err := h.training.ListModules(r.Context())
		if err != nil {
			Error(w, err)
			return
		}
		for _, m := range modules {
			if m.Mandatory {
				moduleIDs = append(moduleIDs, m.ID)
			}
		}
	}
	if len(moduleIDs) == 0 {
		Error(w, validationError("no modules to assign"))
		return
	}

	t := &models.NewHireTraining{
		ApplicationID:   req.ApplicationID,
		HireName:        req.HireName,
		HireEmail:       req.HireEmail,
		AssignedModules: moduleIDs,
		StartDate:       time.Now().UTC(),
	}
	if req.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			Error(w, validationError("startDate must be RFC3339"))
			return
		}
		t.StartDate = parsed
	}

	if err := h.training.CreateHireTraining(r.Context(), t); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, viewOf(t))
}

func (h *TrainingHandler) GetHire(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.training.GetHireTraining(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, viewOf(t))
}

type completeRequest struct {
	ModuleID string `json:"moduleId"`
}

func (h *TrainingHandler) Complete(w http.ResponseWriter, r *http.Request, id string) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.ModuleID == "" {
		Error(w, validationError("moduleId is required"))
		return
	}

	t, err := h.training.CompleteModule(r.Context(), id, req.ModuleID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, viewOf(t))
}
