package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/pkg/mailer"
	"github.com/rakapratama/go-admin-backend/pkg/response"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

type UserHandler struct {
	Svc      *userapp.Service
	Notifier *mailer.Notifier
	Logger   *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, notifier *mailer.Notifier, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Notifier: notifier, Logger: logger}
}

// projectableFields are the columns a caller may select via ?fields=.
// Password hash and remember token are not in the list.
var projectableFields = map[string]struct{}{
	"id":                   {},
	"email":                {},
	"name":                 {},
	"image_url":            {},
	"role":                 {},
	"must_change_password": {},
	"created_at":           {},
	"updated_at":           {},
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":                   u.ID,
		"email":                u.Email,
		"name":                 u.Name,
		"image_url":            u.ImageURL,
		"role":                 u.Role,
		"must_change_password": u.MustChangePassword,
		"created_at":           u.CreatedAt,
		"updated_at":           u.UpdatedAt,
	}
}

func projectUser(u *entity.User, fields []string) gin.H {
	full := userJSON(u)
	if len(fields) == 0 {
		return full
	}
	out := gin.H{}
	for _, f := range fields {
		if v, ok := full[f]; ok {
			out[f] = v
		}
	}
	return out
}

func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if _, ok := projectableFields[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// List returns one page of users ordered by name, optionally filtered
// by a case-insensitive search on name and email, optionally projected
// to the requested fields.
func (h *UserHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 20)
	fields := parseFields(c.Query("fields"))

	users, total, err := h.Svc.ListUsers(c.Request.Context(), page, perPage, c.Query("q"))
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, projectUser(u, fields))
	}
	response.Success(c, http.StatusOK, out, "users", response.NewPageMeta(page, perPage, total))
}

func openUpload(fh *multipart.FileHeader) (multipart.File, string) {
	if fh == nil {
		return nil, ""
	}
	f, err := fh.Open()
	if err != nil {
		return nil, ""
	}
	return f, fh.Filename
}

type createUserForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"omitempty,pwd"`
	Role     string `form:"role"`
}

// Create inserts a user from a multipart form (fields plus optional
// "image" file) and sends the welcome email with the credentials.
func (h *UserHandler) Create(c *gin.Context) {
	var form createUserForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := userapp.CreateUserInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	}
	if fh, err := c.FormFile("image"); err == nil {
		f, name := openUpload(fh)
		if f != nil {
			defer func() { _ = f.Close() }()
			in.Image = f
			in.ImageFilename = name
		}
	}

	res, err := h.Svc.CreateUser(c.Request.Context(), in)
	if err != nil {
		h.Logger.WithError(err).Error("create user failed")
		response.Error[any](c, http.StatusBadRequest, "failed to create user", nil)
		return
	}

	mailSent := h.Notifier.SendWelcome(c.Request.Context(), res.User, res.PlainPassword, res.PasswordGenerated)
	response.Success(c, http.StatusCreated, userJSON(res.User), "user created", gin.H{"mail_sent": mailSent})
}

func (h *UserHandler) Show(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load user", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "user", nil)
}

type updateUserForm struct {
	Name     string `form:"name"`
	Email    string `form:"email" binding:"omitempty,email"`
	Password string `form:"password" binding:"omitempty,pwd"`
	Role     string `form:"role"`
	ImageRef string `form:"image_ref"`
}

// Update applies a partial update. An empty password field leaves the
// stored password alone; omitting both the image upload and image_ref
// clears a previously set image.
func (h *UserHandler) Update(c *gin.Context) {
	var form updateUserForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := userapp.UpdateUserInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
		ImageRef: form.ImageRef,
	}
	if fh, err := c.FormFile("image"); err == nil {
		f, name := openUpload(fh)
		if f != nil {
			defer func() { _ = f.Close() }()
			in.Image = f
			in.ImageFilename = name
		}
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		h.Logger.WithError(err).Error("update user failed")
		response.Error[any](c, http.StatusBadRequest, "failed to update user", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "user updated", nil)
}

// Invite resends the welcome email. The plain password is unknown at
// this point, so the mail shows a masked placeholder.
func (h *UserHandler) Invite(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load user", nil)
		return
	}

	mailSent := h.Notifier.SendWelcome(c.Request.Context(), u, "", false)
	response.Success[any](c, http.StatusOK, gin.H{"mail_sent": mailSent}, "invitation sent", nil)
}

// Search queries the Elasticsearch mirror of the user table.
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size := intQuery(c, "size", 10)

	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// Profile returns the authenticated user's own record.
func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
}
