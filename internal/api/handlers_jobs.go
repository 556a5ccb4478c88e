package api

import (
	"net/http"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/store"
)

// JobHandler serves the job posting endpoints
type JobHandler struct {
	jobs   *store.JobStore
	logger logger.Logger
}

func NewJobHandler(jobs *store.JobStore, log logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: log}
}

type jobRequest struct {
	Title          string   `json:"title"`
	Department     string   `json:"department"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employmentType"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	SalaryMin      int      `json:"salaryMin"`
	SalaryMax      int      `json:"salaryMax"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *JobHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
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
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.Delete(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.Transition(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.JobStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		Error(w, validationError("unknown job status %q", status))
		return
	}

	jobs, err := h.jobs.List(r.Context(), status)
	if err != nil {
		Error(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	JSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Title == "" {
		Error(w, validationError("title is required"))
		return
	}
	if req.Department == "" {
		Error(w, validationError("department is required"))
		return
	}
	if req.SalaryMin > req.SalaryMax && req.SalaryMax != 0 {
		Error(w, validationError("salaryMin exceeds salaryMax"))
		return
	}

	job := &models.Job{
		Title:          req.Title,
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    req.Description,
		Requirements:   req.Requirements,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
	}
	if p, ok := PrincipalFromContext(r.Context()); ok {
		job.CreatedBy = p.Subject
	}

	if err := h.jobs.Create(r.Context(), job); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, job)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, job)
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}

	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Title != "" {
		job.Title = req.Title
	}
	if req.Department != "" {
		job.Department = req.Department
	}
	job.Location = req.Location
	job.EmploymentType = req.EmploymentType
	job.Description = req.Description
	if req.Requirements != nil {
		job.Requirements = req.Requirements
	}
	if req.SalaryMin != 0 {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != 0 {
		job.SalaryMax = req.SalaryMax
	}

	if err := h.jobs.Update(r.Context(), job); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, job)
}

// Delete is idempotent: removing a job twice returns 204 both times
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.jobs.Delete(r.Context(), id); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobHandler) Transition(w http.ResponseWriter, r *http.Request, id string) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	to := models.JobStatus(req.Status)
	if !to.IsValid() {
		Error(w, validationError("unknown job status %q", req.Status))
		return
	}

	job, err := h.jobs.Transition(r.Context(), id, to)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, job)
}
