package handlers

import (
	"errors"
	"net/http"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/service/payment"

	"github.com/gin-gonic/gin"
)

const (
	validationCode    = "LOAN_MPESA_VALIDATION_FAILED"
	validationMessage = "Please correct the highlighted fields"
	internalCode      = "LOAN_MPESA_INTERNAL"
)

type ErrorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Checkout *payment.Snapshot `json:"checkout,omitempty"`
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case models.KindGatewayRejection:
		return http.StatusBadGateway
	case models.KindStoreFault:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func toErrorResponse(err error) ErrorResponse {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return ErrorResponse{Code: validationCode, Message: validationMessage, Fields: verr.Fields}
	}
	var cerr *models.CustomError
	if errors.As(err, &cerr) {
		resp := ErrorResponse{Code: cerr.Code, Message: cerr.Message}
		if cerr.Kind == models.KindValidation {
			resp.Fields = fieldFor(cerr)
		}
		return resp
	}
	return ErrorResponse{Code: internalCode, Message: consts.ErrorStoreUnexpected.Message}
}

// fieldFor attaches single-field validation errors to the input they belong to.
func fieldFor(cerr *models.CustomError) map[string]string {
	switch {
	case errors.Is(cerr, consts.ErrorMSISDNNotValid):
		return map[string]string{"phoneNumber": cerr.Message}
	case errors.Is(cerr, consts.ErrorLoanAmountOutOfRange):
		return map[string]string{"loanAmount": cerr.Message}
	}
	return nil
}

func writeError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), "request failed", err)
	}
	c.JSON(status, toErrorResponse(err))
}

// writeCheckoutError reports err alongside the checkout state it left behind.
func writeCheckoutError(c *gin.Context, err error, snap payment.Snapshot) {
	resp := toErrorResponse(err)
	if snap.State != "" {
		resp.Checkout = &snap
	}
	status := statusFor(models.KindOf(err))
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.CtxError(c.Request.Context(), "checkout request failed", err)
	}
	c.JSON(status, resp)
}
