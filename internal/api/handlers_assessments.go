package api

import (
	"net/http"
	"time"

	commonerr "hiresphere-backend/internal/common/errors"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/proctoring"
	"hiresphere-backend/internal/store"
	"hiresphere-backend/pkg/registry"
)

// AssessmentHandler serves assessment definitions, test assignments, the
// pre-test device check gate, and proctoring event ingestion.
type AssessmentHandler struct {
	assessments *store.AssessmentStore
	templates   *registry.TemplateRegistry
	tracker     *proctoring.Tracker
	logger      logger.Logger
}

func NewAssessmentHandler(assessments *store.AssessmentStore, templates *registry.TemplateRegistry, tracker *proctoring.Tracker, log logger.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		templates:   templates,
		tracker:     tracker,
		logger:      log,
	}
}

func (h *AssessmentHandler) Route(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Create(w, r)
	case len(parts) == 1 && parts[0] == "templates" && r.Method == http.MethodGet:
		h.ListTemplates(w, r)
	case len(parts) == 1 && parts[0] == "from-template" && r.Method == http.MethodPost:
		h.CreateFromTemplate(w, r)
	case len(parts) == 1 && parts[0] == "assignments" && r.Method == http.MethodPost:
		h.Assign(w, r)
	case len(parts) >= 2 && parts[0] == "assignments":
		h.routeAssignment(w, r, parts[1:])
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *AssessmentHandler) routeAssignment(w http.ResponseWriter, r *http.Request, parts []string) {
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetAssignment(w, r, id)
	case len(parts) == 2 && parts[1] == "device-check" && r.Method == http.MethodPost:
		h.DeviceCheck(w, r, id)
	case len(parts) == 2 && parts[1] == "start" && r.Method == http.MethodPost:
		h.Start(w, r, id)
	case len(parts) == 2 && parts[1] == "answers" && r.Method == http.MethodPost:
		h.SaveAnswers(w, r, id)
	case len(parts) == 2 && parts[1] == "submit" && r.Method == http.MethodPost:
		h.Submit(w, r, id)
	case len(parts) == 2 && parts[1] == "proctoring-events" && r.Method == http.MethodPost:
		h.RecordProctoringEvent(w, r, id)
	case len(parts) == 2 && parts[1] == "integrity" && r.Method == http.MethodGet:
		h.Integrity(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

type assessmentRequest struct {
	Title           string                   `json:"title"`
	Skill           string                   `json:"skill"`
	DurationMinutes int                      `json:"durationMinutes"`
	PassingScore    int                      `json:"passingScore"`
	Questions       []models.Question        `json:"questions"`
	Proctoring      *models.ProctoringConfig `json:"proctoring"`
}

func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessments.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}
	JSON(w, http.StatusOK, assessments)
}

func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Title == "" || len(req.Questions) == 0 {
		Error(w, validationError("title and questions are required"))
		return
	}

	a := &models.Assessment{
		Title:           req.Title,
		Skill:           req.Skill,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Questions:       req.Questions,
	}
	if req.Proctoring != nil {
		a.Proctoring = *req.Proctoring
	}

	if err := h.assessments.Create(r.Context(), a); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, a)
}

func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.assessments.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if h.templates == nil {
		JSON(w, http.StatusOK, []registry.Template{})
		return
	}
	JSON(w, http.StatusOK, h.templates.Templates)
}

type fromTemplateRequest struct {
	TemplateID string                 `json:"templateId"`
	Payload    map[string]interface{} `json:"payload"`
}

// CreateFromTemplate validates the payload against the template's JSON
// schema before creating the assessment.
func (h *AssessmentHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req fromTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if h.templates == nil {
		Error(w, commonerr.NewTemplateNotFoundError(req.TemplateID))
		return
	}
	tpl, ok := h.templates.Find(req.TemplateID)
	if !ok {
		Error(w, commonerr.NewTemplateNotFoundError(req.TemplateID))
		return
	}
	if err := tpl.ValidatePayload(req.Payload); err != nil {
		Error(w, commonerr.NewTemplateValidationFailedError(err.Error()))
		return
	}

	a := &models.Assessment{
		Skill:           tpl.Skill,
		DurationMinutes: tpl.DurationMinutes,
		PassingScore:    tpl.PassingScore,
	}
	if title, ok := req.Payload["title"].(string); ok {
		a.Title = title
	}
	if raw, ok := req.Payload["questions"].([]interface{}); ok {
		for _, item := range raw {
			q, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			question := models.Question{}
			if v, ok := q["id"].(string); ok {
				question.ID = v
			}
			if v, ok := q["type"].(string); ok {
				question.Type = v
			}
			if v, ok := q["prompt"].(string); ok {
				question.Prompt = v
			}
			if v, ok := q["answer"].(string); ok {
				question.Answer = v
			}
			if v, ok := q["points"].(float64); ok {
				question.Points = int(v)
			}
			if opts, ok := q["options"].([]interface{}); ok {
				for _, opt := range opts {
					if s, ok := opt.(string); ok {
						question.Options = append(question.Options, s)
					}
				}
			}
			a.Questions = append(a.Questions, question)
		}
	}
	applyProctoringDefaults(&a.Proctoring, tpl.ProctoringDefaults)

	if err := h.assessments.Create(r.Context(), a); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, a)
}

func applyProctoringDefaults(cfg *models.ProctoringConfig, defaults map[string]interface{}) {
	if v, ok := defaults["requireWebcam"].(bool); ok {
		cfg.RequireWebcam = v
	}
	if v, ok := defaults["requireMic"].(bool); ok {
		cfg.RequireMic = v
	}
	if v, ok := defaults["requireFullscreen"].(bool); ok {
		cfg.RequireFullscreen = v
	}
	if v, ok := defaults["maxTabSwitches"].(float64); ok {
		cfg.MaxTabSwitches = int(v)
	}
}

type assignRequest struct {
	AssessmentID  string `json:"assessmentId"`
	ApplicationID string `json:"applicationId"`
	DueAt         string `json:"dueAt"`
}

func (h *AssessmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.AssessmentID == "" || req.ApplicationID == "" {
		Error(w, validationError("assessmentId and applicationId are required"))
		return
	}

	dueAt := time.Now().UTC().Add(7 * 24 * time.Hour)
	if req.DueAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueAt)
		if err != nil {
			Error(w, validationError("dueAt must be RFC3339"))
			return
		}
		dueAt = parsed
	}

	// Assessment must exist before an assignment references it
	if _, err := h.assessments.Get(r.Context(), req.AssessmentID); err != nil {
		Error(w, err)
		return
	}

	t := &models.TestAssignment{
		AssessmentID:  req.AssessmentID,
		ApplicationID: req.ApplicationID,
		DueAt:         dueAt,
	}
	if err := h.assessments.Assign(r.Context(), t); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, t)
}

func (h *AssessmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.assessments.GetAssignment(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, t)
}

type deviceCheckRequest struct {
	Internet   bool `json:"internet"`
	Webcam     bool `json:"webcam"`
	Microphone bool `json:"microphone"`
	Fullscreen bool `json:"fullscreen"`
}

func (h *AssessmentHandler) DeviceCheck(w http.ResponseWriter, r *http.Request, id string) {
	var req deviceCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	check := &models.DeviceCheck{
		Internet:   req.Internet,
		Webcam:     req.Webcam,
		Microphone: req.Microphone,
		Fullscreen: req.Fullscreen,
		CheckedAt:  time.Now().UTC(),
	}
	if err := h.assessments.SetDeviceCheck(r.Context(), id, check); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"passed":      check.Passed(),
		"deviceCheck": check,
	})
}

// Start gates on a fully passed device check before moving the assignment to
// in_progress.
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.assessments.GetAssignment(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if !t.DeviceCheck.Passed() {
		Error(w, commonerr.NewDeviceCheckIncompleteError("all four device checks must pass before starting"))
		return
	}

	t, err = h.assessments.TransitionAssignment(r.Context(), id, models.AssignmentStatusInProgress)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, t)
}

type answersRequest struct {
	Answers map[string]string `json:"answers"`
}

func (h *AssessmentHandler) SaveAnswers(w http.ResponseWriter, r *http.Request, id string) {
	var req answersRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := h.assessments.SaveAnswers(r.Context(), id, req.Answers); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request, id string) {
	var req answersRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if len(req.Answers) > 0 {
		if err := h.assessments.SaveAnswers(r.Context(), id, req.Answers); err != nil {
			Error(w, err)
			return
		}
	}

	t, err := h.assessments.TransitionAssignment(r.Context(), id, models.AssignmentStatusSubmitted)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, t)
}

type proctoringEventRequest struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

func (h *AssessmentHandler) RecordProctoringEvent(w http.ResponseWriter, r *http.Request, id string) {
	var req proctoringEventRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	event := models.ProctoringEvent{
		AssignmentID: id,
		Type:         models.ProctoringEventType(req.Type),
		Details:      req.Details,
	}
	if !event.Type.IsValid() {
		Error(w, validationError("unknown proctoring event type %q", req.Type))
		return
	}

	if err := h.tracker.Record(r.Context(), event); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AssessmentHandler) Integrity(w http.ResponseWriter, r *http.Request, id string) {
	score, err := h.tracker.Score(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	events, err := h.tracker.Events(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"assignmentId":   id,
		"integrityScore": score,
		"events":         events,
	})
}
