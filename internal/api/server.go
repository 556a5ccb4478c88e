// Package api implements the HireSphere REST surface.
package api

import (
	"net/http"
	"strings"
	"time"

	"hiresphere-backend/internal/common/auth"
	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
)

// RouterDependencies carries the per-area handlers and shared middleware
// state the router dispatches to.
type RouterDependencies struct {
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Assessments  *AssessmentHandler
	Offers       *OfferHandler
	Interviews   *InterviewHandler
	Training     *TrainingHandler
	Referrals    *ReferralHandler
	Leads        *LeadHandler
	Agents       *AgentHandler
	AI           *AIHandler
	Email        *EmailHandler

	Verifier auth.TokenVerifier
	Limiter  *RedisLimiter
	Logger   logger.Logger
	Config   config.APIConfig
}

type Router struct {
	deps RouterDependencies
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}

	maxBody := deps.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 21
	}

	mws := []Middleware{
		RequestID,
		Logging(deps.Logger),
		BodyLimit(maxBody),
		Recover(deps.Logger),
		Metrics,
		Timeout(time.Duration(deps.Config.RequestTimeout) * time.Millisecond),
	}
	return Chain(r.baseHandler(), mws...)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		if req.Method == http.MethodGet && path == "/health" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		if strings.HasPrefix(path, "/api/") {
			protected := Chain(
				http.HandlerFunc(r.handleAPI),
				Auth(r.deps.Verifier),
				RateLimit(r.deps.Limiter,
					r.deps.Config.RateLimit.Requests,
					time.Duration(r.deps.Config.RateLimit.WindowMS)*time.Millisecond),
			)
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleAPI(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/api")

	switch {
	case strings.HasPrefix(path, "/jobs"):
		r.deps.Jobs.Route(w, req, strings.TrimPrefix(path, "/jobs"))
	case strings.HasPrefix(path, "/applications"):
		r.deps.Applications.Route(w, req, strings.TrimPrefix(path, "/applications"))
	case strings.HasPrefix(path, "/assessments"):
		r.deps.Assessments.Route(w, req, strings.TrimPrefix(path, "/assessments"))
	case strings.HasPrefix(path, "/offers"):
		r.deps.Offers.Route(w, req, strings.TrimPrefix(path, "/offers"))
	case strings.HasPrefix(path, "/interviews"):
		r.deps.Interviews.RouteInterviews(w, req, strings.TrimPrefix(path, "/interviews"))
	case strings.HasPrefix(path, "/interview-kits"):
		r.deps.Interviews.RouteKits(w, req, strings.TrimPrefix(path, "/interview-kits"))
	case strings.HasPrefix(path, "/calendar"):
		r.deps.Interviews.RouteCalendar(w, req, strings.TrimPrefix(path, "/calendar"))
	case strings.HasPrefix(path, "/training"):
		r.deps.Training.Route(w, req, strings.TrimPrefix(path, "/training"))
	case strings.HasPrefix(path, "/lms"):
		r.deps.Training.RouteLMS(w, req, strings.TrimPrefix(path, "/lms"))
	case strings.HasPrefix(path, "/referrals"):
		r.deps.Referrals.Route(w, req, strings.TrimPrefix(path, "/referrals"))
	case strings.HasPrefix(path, "/candidate-leads"):
		r.deps.Leads.Route(w, req, strings.TrimPrefix(path, "/candidate-leads"))
	case strings.HasPrefix(path, "/agents"):
		r.deps.Agents.Route(w, req, strings.TrimPrefix(path, "/agents"))
	case strings.HasPrefix(path, "/ai"):
		r.deps.AI.Route(w, req, strings.TrimPrefix(path, "/ai"))
	case strings.HasPrefix(path, "/email"):
		r.deps.Email.Route(w, req, strings.TrimPrefix(path, "/email"))
	default:
		http.NotFound(w, req)
	}
}

// pathParts splits the remainder of a route into non-empty segments
func pathParts(rest string) []string {
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func methodNotAllowed(w http.ResponseWriter) {
	JSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
}
