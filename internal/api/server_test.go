package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/auth"
	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/store"
)

func testLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

type routerFixture struct {
	handler  http.Handler
	mock     sqlmock.Sqlmock
	verifier *auth.LocalVerifier
}

func newRouterFixture(t *testing.T) *routerFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	verifier := auth.NewLocalVerifier("test-secret")
	log := testLogger(t)

	deps := RouterDependencies{
		Jobs:      NewJobHandler(store.NewJobStore(db), log),
		Referrals: NewReferralHandler(store.NewReferralStore(db), log),
		Verifier:  verifier,
		Logger:    log,
		Config:    config.APIConfig{},
	}
	return &routerFixture{
		handler:  NewRouter(deps),
		mock:     mock,
		verifier: verifier,
	}
}

func (f *routerFixture) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)

	token, err := f.verifier.Mint(&auth.Principal{
		Subject: "recruiter-1",
		Email:   "recruiter@example.com",
	}, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_UnauthenticatedAPIRequest(t *testing.T) {
	f := newRouterFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CreateJob(t *testing.T) {
	f := newRouterFixture(t)

	f.mock.ExpectExec("INSERT INTO jobs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := f.request(t, http.MethodPost, "/api/jobs", map[string]interface{}{
		"title":      "Backend Engineer",
		"department": "Engineering",
		"salaryMin":  90000,
		"salaryMax":  120000,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CreatedBy string `json:"createdBy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, "recruiter-1", created.CreatedBy)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRouter_CreateJob_MissingTitle(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/jobs", map[string]interface{}{
		"department": "Engineering",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestRouter_CreateJob_SalaryRange(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/jobs", map[string]interface{}{
		"title":      "Backend Engineer",
		"department": "Engineering",
		"salaryMin":  120000,
		"salaryMax":  90000,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DeleteJob_Idempotent(t *testing.T) {
	f := newRouterFixture(t)

	f.mock.ExpectExec("DELETE FROM jobs").
		WithArgs("job-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := f.request(t, http.MethodDelete, "/api/jobs/job-gone", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRouter_UnknownResource(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CreateReferral(t *testing.T) {
	f := newRouterFixture(t)

	f.mock.ExpectExec("INSERT INTO referrals").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := f.request(t, http.MethodPost, "/api/referrals", map[string]interface{}{
		"referrerName":   "Dana Smith",
		"referrerEmail":  "dana@example.com",
		"candidateName":  "Alex Doe",
		"candidateEmail": "alex@example.com",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRouter_CreateReferral_InvalidEmail(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/referrals", map[string]interface{}{
		"referrerName":   "Dana Smith",
		"candidateName":  "Alex Doe",
		"candidateEmail": "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
