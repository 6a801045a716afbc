package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	errs "github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream/error_handling"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
)

// PaymentGatewayAPI interface (for mocking & testing)
type PaymentGatewayAPI interface {
	Initiate(ctx context.Context, req *models.GatewayInitiateRequest) (*models.InitiateResult, error)
	CheckStatus(ctx context.Context, reference string) models.StatusResult
}

type PaymentGatewayClient struct {
	InitiateURL    string
	StatusURL      string
	apiKey         string
	initiateClient *http.Client
	statusClient   *http.Client
}

func NewPaymentGatewayClient(cfg config.GatewayConfig) *PaymentGatewayClient {
	return &PaymentGatewayClient{
		InitiateURL:    cfg.InitiateURL,
		StatusURL:      cfg.StatusURL,
		apiKey:         cfg.APIKey,
		initiateClient: &http.Client{Timeout: cfg.InitiateTimeout},
		statusClient:   &http.Client{Timeout: cfg.StatusTimeout},
	}
}

// Initiate sends the STK push. A nil error means the gateway answered with a
// readable body; Accepted tells whether the push was queued.
func (c *PaymentGatewayClient) Initiate(
	ctx context.Context,
	req *models.GatewayInitiateRequest,
) (*models.InitiateResult, error) {

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errs.NewPaymentGatewayError(fmt.Errorf(log_messages.ErrorFailedToBuildInitiateRequest, err))
	}

	logger.CtxInfo(ctx, log_messages.SendingInitiateRequest,
		slog.String("url", c.InitiateURL),
		slog.String("reference", req.Reference),
		slog.Int64("amount", req.Amount),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.InitiateURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, errs.NewPaymentGatewayError(fmt.Errorf(log_messages.ErrorFailedToBuildInitiateRequest, err))
	}
	c.setHeaders(httpReq)

	resp, err := c.initiateClient.Do(httpReq)
	if err != nil {
		logger.CtxError(ctx, "failed to send initiate request", err, slog.String("url", c.InitiateURL))
		return nil, errs.NewPaymentGatewayError(fmt.Errorf(log_messages.ErrorFailedToSendInitiateRequest, err), -1)
	}
	defer c.closeBody(ctx, resp)

	logger.CtxInfo(ctx, log_messages.ReceivedInitiateResponse, slog.Int("status", resp.StatusCode))

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewPaymentGatewayError(fmt.Errorf("read response body: %w", err), resp.StatusCode)
	}

	return c.processInitiateBody(ctx, req, resp.StatusCode, bodyBytes)
}

func (c *PaymentGatewayClient) processInitiateBody(
	ctx context.Context,
	req *models.GatewayInitiateRequest,
	statusCode int,
	bodyBytes []byte,
) (*models.InitiateResult, error) {

	var respData models.GatewayInitiateResponse
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		logger.CtxError(ctx, "failed to decode initiate response", err, slog.Int("status", statusCode))
		gwErr := errs.NewPaymentGatewayError(fmt.Errorf(log_messages.ErrorFailedToDecodeInitiate, err), statusCode)
		// a type mismatch still fills the fields decoded before it
		gwErr.Message = respData.Error
		return nil, gwErr
	}

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices && respData.Success {
		ref := respData.PayheroReference
		if ref == "" {
			ref = req.Reference
		}
		return &models.InitiateResult{Accepted: true, GatewayReference: ref}, nil
	}

	logger.CtxWarn(ctx, "initiate not accepted",
		slog.Int("status", statusCode),
		slog.String("gateway_error", respData.Error),
	)
	return &models.InitiateResult{Accepted: false, Error: respData.Error}, nil
}

// CheckStatus queries the transaction status. It never returns an error;
// every outcome is folded into a StatusResult.
func (c *PaymentGatewayClient) CheckStatus(ctx context.Context, reference string) models.StatusResult {
	reqURL, err := buildURLWithQuery(c.StatusURL, map[string]string{"reference": reference})
	if err != nil {
		return models.StatusTransientError{Err: err}
	}

	logger.CtxDebug(ctx, log_messages.SendingStatusRequest, slog.String("reference", reference))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorFailedToBuildStatusRequest, err)}
	}
	c.setHeaders(httpReq)

	resp, err := c.statusClient.Do(httpReq)
	if err != nil {
		logger.CtxWarn(ctx, "failed to send status request", slog.String("error", err.Error()))
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorFailedToSendStatusRequest, err)}
	}
	defer c.closeBody(ctx, resp)

	logger.CtxDebug(ctx, log_messages.ReceivedStatusResponse,
		slog.String("reference", reference),
		slog.Int("status", resp.StatusCode),
	)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return models.StatusNotFound{}
	case http.StatusBadRequest:
		return models.StatusRejected{Message: consts.ErrorInvalidTransactionReference.Message}
	case http.StatusOK:
	default:
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorStatusUnexpectedStatus, resp.StatusCode)}
	}

	var respData models.GatewayStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorFailedToDecodeStatus, err)}
	}
	if !respData.Success {
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorStatusNotSuccessful, respData.Error)}
	}
	if !respData.Status.IsKnown() {
		return models.StatusTransientError{Err: fmt.Errorf(log_messages.ErrorStatusUnknown, respData.Status)}
	}
	return models.StatusOK{Status: respData.Status}
}

func (c *PaymentGatewayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", consts.ContentType)
	if c.apiKey != "" {
		req.Header.Set(consts.HeaderAPIKey, c.apiKey)
	}
}

func (c *PaymentGatewayClient) closeBody(ctx context.Context, resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		logger.CtxError(ctx, log_messages.ErrorFailedToCloseResponseBody, cerr)
	}
}

func buildURLWithQuery(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf(log_messages.ErrorFailedToBuildURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf(log_messages.ErrorFailedToBuildURL, errors.New("missing scheme or host"))
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
