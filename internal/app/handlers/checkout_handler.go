package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/app"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/eligibility"
	"github.com/KelluuhShit/loan-mpesa/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service app.CheckoutService
}

func NewCheckoutHandler(service app.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) Pay(c *gin.Context) {
	h.start(c, h.service.Pay)
}

func (h *CheckoutHandler) Retry(c *gin.Context) {
	h.start(c, h.service.Retry)
}

type startFunc func(ctx context.Context, trackingNumber, phone string) (payment.Snapshot, error)

func (h *CheckoutHandler) start(c *gin.Context, fn startFunc) {
	var body models.PayRequest
	// the body is optional; an empty one keeps the quoted number
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, eligibility.FieldErrors(err, time.Now()))
		return
	}

	snap, err := fn(c.Request.Context(), c.Param("trackingNumber"), body.PhoneNumber)
	if err != nil {
		writeCheckoutError(c, err, snap)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

func (h *CheckoutHandler) Status(c *gin.Context) {
	snap, err := h.service.Status(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *CheckoutHandler) Dismiss(c *gin.Context) {
	if err := h.service.Dismiss(c.Request.Context(), c.Param("trackingNumber")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
