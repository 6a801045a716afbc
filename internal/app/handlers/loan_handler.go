package handlers

import (
	"net/http"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/app"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/eligibility"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	service app.LoanService
}

func NewLoanHandler(service app.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) Quote(c *gin.Context) {
	var body models.QuoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, eligibility.FieldErrors(err, time.Now()))
		return
	}

	application, err := h.service.Quote(c.Request.Context(), body.NationalID, body.LoanAmount, body.PhoneNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

func (h *LoanHandler) Progress(c *gin.Context) {
	loan, err := h.service.Progress(c.Request.Context(), c.Query("phoneNumber"), c.Query("nationalId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}
