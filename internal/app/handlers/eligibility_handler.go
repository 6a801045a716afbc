package handlers

import (
	"net/http"

	"github.com/KelluuhShit/loan-mpesa/internal/app"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/eligibility"

	"github.com/gin-gonic/gin"
)

type EligibilityHandler struct {
	service app.EligibilityService
}

func NewEligibilityHandler(service app.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

func (h *EligibilityHandler) CheckEligibility(c *gin.Context) {
	var body models.EligibilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, eligibility.FieldErrors(err, h.service.Now()))
		return
	}

	resp, err := h.service.Check(c.Request.Context(), &body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EligibilityHandler) GetEligibility(c *gin.Context) {
	resp, err := h.service.Lookup(c.Request.Context(), c.Param("nationalId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
