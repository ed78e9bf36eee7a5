package modules

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
	"github.com/rakapratama/go-admin-backend/internal/session"
)

type stubFailedJobRepo struct {
	jobs []*entity.FailedJob
}

func (r *stubFailedJobRepo) Insert(_ context.Context, j *entity.FailedJob) error {
	r.jobs = append(r.jobs, j)
	return nil
}

func (r *stubFailedJobRepo) List(_ context.Context, limit, offset int) ([]*entity.FailedJob, int, error) {
	total := len(r.jobs)
	if offset >= total {
		return nil, total, nil
	}
	out := r.jobs[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func newJobEngine(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := &stubFailedJobRepo{jobs: []*entity.FailedJob{
		{ID: 1, Queue: "emails", Payload: json.RawMessage(`{"to":"x@example.com"}`), Error: "send failed", FailedAt: time.Now().UTC()},
	}}
	handler := handlers.NewJobHandler(userapp.NewJobService(repo, logger), logger)

	sm := session.NewManager(session.NewMemoryBackend(), "sid", time.Hour, "", false)
	ac := middleware.AuthContext{Sessions: sm, LoginPath: "/login"}

	r := gin.New()
	r.Use(sm.Ensure())
	NewJobModule(handler, ac).Register(r.Group("/"))
	return r, sm
}

func TestJobModuleGuardsFailedJobList(t *testing.T) {
	r, _ := newJobEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/jobs/failed", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect_url=%2Fadmin%2Fjobs%2Ffailed", w.Header().Get("Location"))
}

func TestJobModuleServesFailedJobList(t *testing.T) {
	r, sm := newJobEngine(t)
	require.NoError(t, sm.Backend.Put(context.Background(), "job-session", "user_id", "u1"))

	req := httptest.NewRequest(http.MethodGet, "/admin/jobs/failed", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "job-session"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "send failed")
	assert.Contains(t, w.Body.String(), `"total":1`)
}
