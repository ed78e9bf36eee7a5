package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/pkg/response"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

type RoleHandler struct {
	Svc    *userapp.RoleService
	Logger *logrus.Logger
}

func NewRoleHandler(svc *userapp.RoleService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{Svc: svc, Logger: logger}
}

type roleRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Title string `json:"title" binding:"required"`
}

func roleJSON(r *entity.Role) gin.H {
	return gin.H{
		"id":         r.ID,
		"slug":       r.Slug,
		"title":      r.Title,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	}
}

func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.Svc.ListRoles(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list roles failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list roles", nil)
		return
	}
	out := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleJSON(r))
	}
	response.Success(c, http.StatusOK, out, "roles", nil)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	r, err := h.Svc.CreateRole(c.Request.Context(), userapp.RoleInput{Slug: req.Slug, Title: req.Title})
	if verr, ok := userapp.AsValidationError(err); ok {
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", verr.Details)
		return
	}
	if err != nil {
		h.Logger.WithError(err).Error("create role failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create role", nil)
		return
	}
	response.Success(c, http.StatusCreated, roleJSON(r), "role created", nil)
}

func (h *RoleHandler) Show(c *gin.Context) {
	r, err := h.Svc.GetRole(c.Request.Context(), c.Param("id"))
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "role not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load role", nil)
		return
	}
	response.Success(c, http.StatusOK, roleJSON(r), "role", nil)
}

func (h *RoleHandler) Update(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	r, err := h.Svc.UpdateRole(c.Request.Context(), c.Param("id"), userapp.RoleInput{Slug: req.Slug, Title: req.Title})
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "role not found", nil)
		return
	}
	if verr, ok := userapp.AsValidationError(err); ok {
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", verr.Details)
		return
	}
	if err != nil {
		h.Logger.WithError(err).Error("update role failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update role", nil)
		return
	}
	response.Success(c, http.StatusOK, roleJSON(r), "role updated", nil)
}
