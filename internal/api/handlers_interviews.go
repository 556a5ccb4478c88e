package api

import (
	"net/http"
	"time"

	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/scheduler"
	"hiresphere-backend/internal/store"
)

// InterviewHandler serves interview scheduling, kits, and the calendar view
type InterviewHandler struct {
	interviews   *store.InterviewStore
	applications *store.ApplicationStore
	scheduler    *scheduler.Scheduler
	logger       logger.Logger
}

func NewInterviewHandler(interviews *store.InterviewStore, applications *store.ApplicationStore, sched *scheduler.Scheduler, log logger.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviews:   interviews,
		applications: applications,
		scheduler:    sched,
		logger:       log,
	}
}

func (h *InterviewHandler) RouteInterviews(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.List(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.Schedule(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.Get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "feedback" && r.Method == http.MethodPost:
		h.Feedback(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.SetStatus(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *InterviewHandler) RouteKits(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.ListKits(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.CreateKit(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetKit(w, r, parts[0])
	default:
		methodNotAllowed(w)
	}
}

func (h *InterviewHandler) RouteCalendar(w http.ResponseWriter, r *http.Request, rest string) {
	parts := pathParts(rest)

	switch {
	case len(parts) == 1 && parts[0] == "slots" && r.Method == http.MethodGet:
		h.Slots(w, r)
	default:
		methodNotAllowed(w)
	}
}

type interviewRequest struct {
	ApplicationID string   `json:"applicationId"`
	Round         string   `json:"round"`
	ScheduledAt   string   `json:"scheduledAt"`
	DurationMin   int      `json:"durationMinutes"`
	Interviewers  []string `json:"interviewers"`
	MeetingLink   string   `json:"meetingLink"`
	KitID         string   `json:"kitId"`
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	applicationID := r.URL.Query().Get("applicationId")
	if applicationID == "" {
		Error(w, validationError("applicationId query parameter is required"))
		return
	}
	interviews, err := h.interviews.ListByApplication(r.Context(), applicationID)
	if err != nil {
		Error(w, err)
		return
	}
	if interviews == nil {
		interviews = []models.Interview{}
	}
	JSON(w, http.StatusOK, interviews)
}

// Schedule books an interview. When scheduledAt is omitted the next free
// slot for the requested interviewers is picked automatically.
func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req interviewRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.ApplicationID == "" || len(req.Interviewers) == 0 {
		Error(w, validationError("applicationId and at least one interviewer are required"))
		return
	}

	if _, err := h.applications.Get(r.Context(), req.ApplicationID); err != nil {
		Error(w, err)
		return
	}

	iv := &models.Interview{
		ApplicationID: req.ApplicationID,
		Round:         req.Round,
		DurationMin:   req.DurationMin,
		Interviewers:  req.Interviewers,
		MeetingLink:   req.MeetingLink,
		KitID:         req.KitID,
	}

	if req.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			Error(w, validationError("scheduledAt must be RFC3339"))
			return
		}
		iv.ScheduledAt = parsed
	} else {
		slot, err := h.scheduler.FindSlot(r.Context(), time.Now(), req.Interviewers)
		if err != nil {
			Error(w, err)
			return
		}
		iv.ScheduledAt = slot.Start
		if iv.DurationMin <= 0 {
			iv.DurationMin = int(slot.End.Sub(slot.Start).Minutes())
		}
	}

	if err := h.interviews.Create(r.Context(), iv); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, iv)
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	iv, err := h.interviews.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, iv)
}

type feedbackRequest struct {
	Score int    `json:"score"`
	Notes string `json:"notes"`
}

// Feedback records the panel's score and marks the interview completed
func (h *InterviewHandler) Feedback(w http.ResponseWriter, r *http.Request, id string) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Score < 1 || req.Score > 5 {
		Error(w, validationError("score must be between 1 and 5"))
		return
	}

	iv, err := h.interviews.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	iv.FeedbackScore = &req.Score
	iv.FeedbackNotes = req.Notes
	iv.Status = models.InterviewStatusCompleted

	if err := h.interviews.Update(r.Context(), iv); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, iv)
}

type interviewStatusRequest struct {
	Status models.InterviewStatus `json:"status"`
}

func (h *InterviewHandler) SetStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req interviewStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	switch req.Status {
	case models.InterviewStatusScheduled, models.InterviewStatusCompleted,
		models.InterviewStatusCancelled, models.InterviewStatusNoShow:
	default:
		Error(w, validationError("unknown interview status %q", req.Status))
		return
	}

	iv, err := h.interviews.Get(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	iv.Status = req.Status

	if err := h.interviews.Update(r.Context(), iv); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, iv)
}

type kitRequest struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Questions []string `json:"questions"`
	Rubric    string   `json:"rubric"`
}

func (h *InterviewHandler) ListKits(w http.ResponseWriter, r *http.Request) {
	kits, err := h.interviews.ListKits(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	if kits == nil {
		kits = []models.InterviewKit{}
	}
	JSON(w, http.StatusOK, kits)
}

func (h *InterviewHandler) CreateKit(w http.ResponseWriter, r *http.Request) {
	var req kitRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Name == "" || len(req.Questions) == 0 {
		Error(w, validationError("name and at least one question are required"))
		return
	}

	kit := &models.InterviewKit{
		Name:      req.Name,
		Role:      req.Role,
		Questions: req.Questions,
		Rubric:    req.Rubric,
	}
	if err := h.interviews.CreateKit(r.Context(), kit); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, kit)
}

func (h *InterviewHandler) GetKit(w http.ResponseWriter, r *http.Request, id string) {
	kit, err := h.interviews.GetKit(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, kit)
}

// Slots proposes up to `count` open interview slots for the given panel
func (h *InterviewHandler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	interviewers := q["interviewer"]
	if len(interviewers) == 0 {
		Error(w, validationError("at least one interviewer query parameter is required"))
		return
	}

	from := time.Now()
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			Error(w, validationError("from must be RFC3339"))
			return
		}
		from = parsed
	}

	count := 5
	slots := make([]models.TimeSlot, 0, count)
	cursor := from
	for len(slots) < count {
		slot, err := h.scheduler.FindSlot(r.Context(), cursor, interviewers)
		if err != nil {
			break
		}
		slots = append(slots, *slot)
		cursor = slot.End
	}

	JSON(w, http.StatusOK, slots)
}
