package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/service"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/response"
)

// JobHandler exposes manual runs of the scheduled reminder jobs.
type JobHandler struct {
	reminders *service.ReminderService
	metrics   *service.MetricsService
}

// NewJobHandler constructs a job handler.
func NewJobHandler(reminders *service.ReminderService, metrics *service.MetricsService) *JobHandler {
	return &JobHandler{reminders: reminders, metrics: metrics}
}

// RunPushReminders triggers the push reminder job immediately.
func (h *JobHandler) RunPushReminders(c *gin.Context) {
	start := time.Now()
	stats, err := h.reminders.RunPushReminders(c.Request.Context(), time.Now().UTC())
	if h.metrics != nil {
		h.metrics.ObserveJobRun("push_reminders", time.Since(start), err)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// RunEmailReminders triggers the email reminder job immediately.
func (h *JobHandler) RunEmailReminders(c *gin.Context) {
	start := time.Now()
	stats, err := h.reminders.RunEmailReminders(c.Request.Context(), time.Now().UTC())
	if h.metrics != nil {
		h.metrics.ObserveJobRun("email_reminders", time.Since(start), err)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
