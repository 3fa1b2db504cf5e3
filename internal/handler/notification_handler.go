package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	"github.com/Jayasrip08/apec-digital-no-dues/internal/service"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/response"
)

// NotificationHandler serves the client's notification inbox.
type NotificationHandler struct {
	ledger *service.LedgerService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(ledger *service.LedgerService) *NotificationHandler {
	return &NotificationHandler{ledger: ledger}
}

// History lists a user's notifications, newest first.
func (h *NotificationHandler) History(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user id is required"))
		return
	}

	filter := models.NotificationFilter{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	notifications, pagination, err := h.ledger.History(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// MarkRead flips a notification's read flag.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "notification id is required"))
		return
	}
	if err := h.ledger.MarkRead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
