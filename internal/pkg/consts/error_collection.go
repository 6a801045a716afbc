package consts

import "github.com/KelluuhShit/loan-mpesa/internal/pkg/models"

var (
	ErrorMSISDNNotValid = &models.CustomError{
		Code:    "LOAN_MPESA_VALIDATION_MSISDN_INVALID",
		Message: "Please enter a valid phone number (e.g., 07XXXXXXXX or 01XXXXXXXX)",
		Kind:    models.KindValidation,
	}
	ErrorFeeAmountNotValid = &models.CustomError{
		Code:    "LOAN_MPESA_VALIDATION_AMOUNT_INVALID",
		Message: "Amount must be a positive whole number",
		Kind:    models.KindValidation,
	}
	ErrorInvalidAccess = &models.CustomError{
		Code:    "LOAN_MPESA_VALIDATION_MISSING_IDENTITY",
		Message: "Invalid access. Please track your loan from the home page.",
		Kind:    models.KindValidation,
	}
	ErrorGatewayInitiateFailed = &models.CustomError{
		Code:    "LOAN_MPESA_GATEWAY_INITIATE_FAILED",
		Message: "Failed to initiate STK Push",
		Kind:    models.KindGatewayRejection,
	}
	ErrorStatusCheckRetrying = &models.CustomError{
		Code:    "LOAN_MPESA_GATEWAY_STATUS_RETRYING",
		Message: "Error checking transaction status. Retrying...",
		Kind:    models.KindTransientPoll,
	}
	ErrorStatusCheckTimedOut = &models.CustomError{
		Code:    "LOAN_MPESA_GATEWAY_STATUS_TIMEOUT",
		Message: "Request timed out. Retrying...",
		Kind:    models.KindTransientPoll,
	}
	ErrorInvalidTransactionReference = &models.CustomError{
		Code:    "LOAN_MPESA_GATEWAY_INVALID_REFERENCE",
		Message: "Invalid transaction reference. Please contact support.",
		Kind:    models.KindTransientPoll,
	}
	ErrorPaymentFailed = &models.CustomError{
		Code:    "LOAN_MPESA_PAYMENT_FAILED",
		Message: "Transaction failed or was cancelled. Please try again.",
		Kind:    models.KindTerminalPaymentFailure,
	}
	ErrorPaymentTimeout = &models.CustomError{
		Code:    "LOAN_MPESA_PAYMENT_TIMEOUT",
		Message: "Transaction timed out. Please contact support.",
		Kind:    models.KindTimeoutExpiry,
	}
	ErrorPaymentInProgress = &models.CustomError{
		Code:    "LOAN_MPESA_PAYMENT_IN_PROGRESS",
		Message: "A payment for this loan is already in progress",
		Kind:    models.KindConflict,
	}
	ErrorPaymentAlreadyConfirmed = &models.CustomError{
		Code:    "LOAN_MPESA_PAYMENT_ALREADY_CONFIRMED",
		Message: "The service fee for this loan has already been paid",
		Kind:    models.KindConflict,
	}
	ErrorNothingToRetry = &models.CustomError{
		Code:    "LOAN_MPESA_PAYMENT_NOTHING_TO_RETRY",
		Message: "There is no payment attempt to retry",
		Kind:    models.KindConflict,
	}
	ErrorSessionNotFound = &models.CustomError{
		Code:    "LOAN_MPESA_CHECKOUT_SESSION_NOT_FOUND",
		Message: "Invalid Loan Details. Please try again or contact support.",
		Kind:    models.KindNotFound,
	}
	ErrorEligibilityNotFound = &models.CustomError{
		Code:    "LOAN_MPESA_ELIGIBILITY_NOT_FOUND",
		Message: "No eligibility record found. Please check your eligibility first.",
		Kind:    models.KindNotFound,
	}
	ErrorLoanNotFound = &models.CustomError{
		Code:    "LOAN_MPESA_LOAN_NOT_FOUND",
		Message: "No loan data found.",
		Kind:    models.KindNotFound,
	}
	ErrorLoanAmountOutOfRange = &models.CustomError{
		Code:    "LOAN_MPESA_VALIDATION_LOAN_AMOUNT",
		Message: "Loan amount is outside your eligible range",
		Kind:    models.KindValidation,
	}
	ErrorStorePermissionDenied = &models.CustomError{
		Code:    "LOAN_MPESA_STORE_PERMISSION_DENIED",
		Message: "Permission denied. Please ensure you are authorized.",
		Kind:    models.KindStoreFault,
	}
	ErrorStoreUnavailable = &models.CustomError{
		Code:    "LOAN_MPESA_STORE_UNAVAILABLE",
		Message: "Database service unavailable. Please try again later.",
		Kind:    models.KindStoreFault,
	}
	ErrorStoreUnexpected = &models.CustomError{
		Code:    "LOAN_MPESA_STORE_UNEXPECTED",
		Message: "An unexpected error occurred. Please try again.",
		Kind:    models.KindStoreFault,
	}
)
