package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapratama/go-admin-backend/config"
	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/domain/repository"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
	"github.com/rakapratama/go-admin-backend/internal/session"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/mailer"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

// memUserRepo is a minimal in-memory UserRepository for handler tests.
type memUserRepo struct {
	users     map[string]*entity.User
	insertErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (f *memUserRepo) WithinTx(_ context.Context, fn func(tx repository.UserRepository) error) error {
	before := make(map[string]*entity.User, len(f.users))
	for id, u := range f.users {
		cp := *u
		before[id] = &cp
	}
	if err := fn(f); err != nil {
		f.users = before
		return err
	}
	return nil
}

func (f *memUserRepo) Insert(_ context.Context, u *entity.User) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *memUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *memUserRepo) UpdateImage(_ context.Context, id, imageURL string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ImageURL = imageURL
	return nil
}

func (f *memUserRepo) SetRememberToken(_ context.Context, id, token string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RememberToken = token
	return nil
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) GetByRememberToken(_ context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range f.users {
		if u.RememberToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) FindFirstByColumns(_ context.Context, columns map[string]any) (*entity.User, error) {
	if len(columns) == 0 {
		return nil, repository.ErrNotFound
	}
	for _, u := range f.users {
		match := true
		for col, v := range columns {
			switch col {
			case "id":
				match = match && u.ID == v
			case "email":
				match = match && u.Email == v
			default:
				match = false
			}
		}
		if match {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.User, int, error) {
	var all []*entity.User
	for _, u := range f.users {
		if u.MatchesSearch(q.Search) {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if q.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[q.Offset:]
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}
	return all, total, nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type recordingSender struct {
	to   []string
	text string
}

func (s *recordingSender) Send(_ context.Context, to, _, text, _ string) error {
	s.to = append(s.to, to)
	s.text = text
	return nil
}

type testEnv struct {
	engine   *gin.Engine
	repo     *memUserRepo
	sessions *session.Manager
	sender   *recordingSender
	svc      *userapp.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		AppName:            "backend",
		LoginPath:          "/login",
		LoginURL:           "http://localhost:8080/login",
		RememberTTL:        30 * 24 * time.Hour,
		ManagerEmail:       "manager@example.com",
		ManagerDefaultRole: "manager",
		MailSendEnabled:    true,
		WelcomeTemplate:    "welcome",
	}

	repo := newMemUserRepo()
	svc := userapp.NewService(repo, nil, nil, "", logger, cfg)
	sm := session.NewManager(session.NewMemoryBackend(), "sid", time.Hour, "", false)
	sender := &recordingSender{}
	notifier := mailer.NewNotifier(cfg, nil, sender, logger)

	authHandler := NewAuthHandler(svc, sm, logger, cfg)
	userHandler := NewUserHandler(svc, notifier, logger)

	authCtx := middleware.AuthContext{Sessions: sm, Users: svc, LoginPath: cfg.LoginPath}

	r := gin.New()
	r.Use(sm.Ensure())
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)

	admin := r.Group("/admin", middleware.Auth(authCtx))
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.GET("/users/:id", userHandler.Show)
	admin.POST("/users/:id/invite", userHandler.Invite)
	admin.POST("/logout", authHandler.Logout)

	return &testEnv{engine: r, repo: repo, sessions: sm, sender: sender, svc: svc}
}

func (e *testEnv) seedUser(t *testing.T, name, email, password string) *entity.User {
	t.Helper()
	res, err := e.svc.CreateUser(context.Background(), userapp.CreateUserInput{
		Name: name, Email: email, Password: password,
	})
	require.NoError(t, err)
	e.sender.to = nil
	return res.User
}

func (e *testEnv) loginSession(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	sid := "session-" + userID
	require.NoError(t, e.sessions.Backend.Put(context.Background(), sid, "user_id", userID))
	return &http.Cookie{Name: "sid", Value: sid}
}

func doJSON(r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginDistinguishesFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Jane", "jane@example.com", "right-password")
	sid := &http.Cookie{Name: "sid", Value: "login-test"}

	w := doJSON(env.engine, http.MethodPost, "/login", gin.H{
		"email": "missing@example.com", "password": "whatever1",
	}, sid)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(env.engine, http.MethodPost, "/login", gin.H{
		"email": "jane@example.com", "password": "wrong-password",
	}, sid)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(env.engine, http.MethodPost, "/login", gin.H{
		"email": "jane@example.com", "password": "right-password",
	}, sid)
	require.Equal(t, http.StatusOK, w.Code)

	uid, err := env.sessions.Backend.Get(context.Background(), "login-test", "user_id")
	require.NoError(t, err)
	assert.NotEmpty(t, uid)
}

func TestLoginRememberMeSetsCookie(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Jane", "jane@example.com", "right-password")

	w := doJSON(env.engine, http.MethodPost, "/login", gin.H{
		"email": "jane@example.com", "password": "right-password", "remember_me": true,
	}, &http.Cookie{Name: "sid", Value: "remember-test"})
	require.Equal(t, http.StatusOK, w.Code)

	var remember string
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.RememberCookie {
			remember = c.Value
		}
	}
	require.NotEmpty(t, remember)

	u, err := env.repo.GetByRememberToken(context.Background(), remember)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestLoginHonorsRedirectURL(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Jane", "jane@example.com", "right-password")

	w := doJSON(env.engine, http.MethodPost, "/login?redirect_url=%2Fadmin%2Fusers%3Fpage%3D2", gin.H{
		"email": "jane@example.com", "password": "right-password",
	}, &http.Cookie{Name: "sid", Value: "redirect-test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/admin/users?page=2")
}

func TestGuestBounceShowsFlashOnLoginPage(t *testing.T) {
	env := newTestEnv(t)
	sid := &http.Cookie{Name: "sid", Value: "guest"}

	w := doJSON(env.engine, http.MethodGet, "/admin/users", nil, sid)
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, "/login?redirect_url=%2Fadmin%2Fusers", location)

	w = doJSON(env.engine, http.MethodGet, location, nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), middleware.NotLoggedInMessage)
	assert.Contains(t, w.Body.String(), "/admin/users")
}

func TestListProjectsRequestedFields(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin", "admin@example.com", "password1")
	env.seedUser(t, "Zoe", "zoe@example.com", "password1")
	cookie := env.loginSession(t, admin.ID)

	w := doJSON(env.engine, http.MethodGet, "/admin/users?fields=name,email,password_hash", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Meta.Total)
	require.NotEmpty(t, envelope.Data)
	for _, row := range envelope.Data {
		assert.Contains(t, row, "name")
		assert.Contains(t, row, "email")
		// Unknown and sensitive fields never pass the whitelist.
		assert.NotContains(t, row, "password_hash")
		assert.NotContains(t, row, "id")
	}
}

func TestCreateUserSendsWelcomeMail(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin", "admin@example.com", "password1")
	cookie := env.loginSession(t, admin.ID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "New Person"))
	require.NoError(t, mw.WriteField("email", "new@example.com"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/users", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, []string{"new@example.com"}, env.sender.to)
	// Generated credentials go out in the welcome mail.
	assert.Contains(t, env.sender.text, "change it the")
	assert.Contains(t, w.Body.String(), `"mail_sent":true`)
}

func TestCreateFailureHidesInternalError(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin", "admin@example.com", "password1")
	cookie := env.loginSession(t, admin.ID)
	env.repo.insertErr = errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "New Person"))
	require.NoError(t, mw.WriteField("email", "new@example.com"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/users", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed to create user")
	// The database wording stays in the logs, never in the response.
	assert.NotContains(t, w.Body.String(), "duplicate key")
	assert.NotContains(t, w.Body.String(), "users_email_key")
}

func TestInviteResendsMaskedPassword(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin", "admin@example.com", "password1")
	target := env.seedUser(t, "Jane", "jane@example.com", "password1")
	cookie := env.loginSession(t, admin.ID)

	w := doJSON(env.engine, http.MethodPost, "/admin/users/"+target.ID+"/invite", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"jane@example.com"}, env.sender.to)
	assert.Contains(t, env.sender.text, mailer.MaskedPassword)
	assert.NotContains(t, env.sender.text, "password1")
}
