package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/service"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/response"
)

// EventHandler receives document-change events from the platform event bus.
type EventHandler struct {
	payments  *service.PaymentNotifierService
	lifecycle *service.LifecycleService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(payments *service.PaymentNotifierService, lifecycle *service.LifecycleService) *EventHandler {
	return &EventHandler{payments: payments, lifecycle: lifecycle}
}

// PaymentUpdated handles a payment document update event.
func (h *EventHandler) PaymentUpdated(c *gin.Context) {
	var change service.PaymentChange
	if err := c.ShouldBindJSON(&change); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}

	if err := h.payments.HandleStatusChange(c.Request.Context(), change); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"handled": true}, nil)
}

// UserUpdated handles a user document update event.
func (h *EventHandler) UserUpdated(c *gin.Context) {
	var change service.UserChange
	if err := c.ShouldBindJSON(&change); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}

	if err := h.lifecycle.HandleUserChange(c.Request.Context(), change); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"handled": true}, nil)
}
