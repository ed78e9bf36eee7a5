package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/pkg/response"
)

type JobHandler struct {
	Svc    *userapp.JobService
	Logger *logrus.Logger
}

func NewJobHandler(svc *userapp.JobService, logger *logrus.Logger) *JobHandler {
	return &JobHandler{Svc: svc, Logger: logger}
}

// List returns failed background jobs, newest first.
func (h *JobHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 20)

	jobs, total, err := h.Svc.ListFailures(c.Request.Context(), page, perPage)
	if err != nil {
		h.Logger.WithError(err).Error("list failed jobs failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list failed jobs", nil)
		return
	}

	out := make([]gin.H, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, gin.H{
			"id":        j.ID,
			"queue":     j.Queue,
			"payload":   json.RawMessage(j.Payload),
			"error":     j.Error,
			"failed_at": j.FailedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "failed jobs", response.NewPageMeta(page, perPage, total))
}
