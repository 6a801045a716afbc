package downstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	errs "github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream/error_handling"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(initiateURL, statusURL string) *PaymentGatewayClient {
	return NewPaymentGatewayClient(config.GatewayConfig{
		InitiateURL:     initiateURL,
		StatusURL:       statusURL,
		APIKey:          "test-key",
		InitiateTimeout: 2 * time.Second,
		StatusTimeout:   2 * time.Second,
	})
}

func TestInitiate(t *testing.T) {
	tests := []struct {
		name           string
		mockStatusCode int
		mockBody       string
		want           *models.InitiateResult
		expectError    bool
		wantMessage    string
	}{
		{
			name:           "accepted with gateway reference",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true,"payheroReference":"PH-777"}`,
			want:           &models.InitiateResult{Accepted: true, GatewayReference: "PH-777"},
		},
		{
			name:           "accepted without gateway reference keeps client reference",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true}`,
			want:           &models.InitiateResult{Accepted: true, GatewayReference: "LN-abc"},
		},
		{
			name:           "declined with message",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":false,"error":"insufficient permissions"}`,
			want:           &models.InitiateResult{Accepted: false, Error: "insufficient permissions"},
		},
		{
			name:           "http error with message",
			mockStatusCode: http.StatusBadGateway,
			mockBody:       `{"success":false,"error":"provider down"}`,
			want:           &models.InitiateResult{Accepted: false, Error: "provider down"},
		},
		{
			name:           "http error claiming success is not accepted",
			mockStatusCode: http.StatusInternalServerError,
			mockBody:       `{"success":true}`,
			want:           &models.InitiateResult{Accepted: false},
		},
		{
			name:           "malformed body",
			mockStatusCode: http.StatusInternalServerError,
			mockBody:       `<html>oops</html>`,
			expectError:    true,
		},
		{
			name:           "partly decodable body keeps gateway message",
			mockStatusCode: http.StatusBadGateway,
			mockBody:       `{"error":"Invalid phone number","success":"no"}`,
			expectError:    true,
			wantMessage:    "Invalid phone number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var got models.GatewayInitiateRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, models.GatewayInitiateRequest{PhoneNumber: "254712345678", Amount: 200, Reference: "LN-abc"}, got)

				w.WriteHeader(tt.mockStatusCode)
				_, _ = w.Write([]byte(tt.mockBody))
			}))
			defer server.Close()

			client := newTestClient(server.URL, server.URL)
			res, err := client.Initiate(context.Background(), &models.GatewayInitiateRequest{
				PhoneNumber: "254712345678",
				Amount:      200,
				Reference:   "LN-abc",
			})

			if tt.expectError {
				require.Error(t, err)
				var gwErr *errs.PaymentGatewayError
				require.ErrorAs(t, err, &gwErr)
				assert.Equal(t, tt.mockStatusCode, gwErr.StatusCode)
				assert.Equal(t, tt.wantMessage, gwErr.GatewayMessage())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestInitiate_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, url).Initiate(context.Background(), &models.GatewayInitiateRequest{Reference: "LN-1"})

	var gwErr *errs.PaymentGatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, -1, gwErr.StatusCode)
}

func TestInitiate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	client.initiateClient.Timeout = 20 * time.Millisecond

	_, err := client.Initiate(context.Background(), &models.GatewayInitiateRequest{Reference: "LN-1"})
	assert.Error(t, err)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name           string
		mockStatusCode int
		mockBody       string
		check          func(t *testing.T, res models.StatusResult)
	}{
		{
			name:           "queued",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true,"status":"QUEUED"}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.Equal(t, models.StatusOK{Status: models.StatusQueued}, res)
			},
		},
		{
			name:           "success",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true,"status":"SUCCESS"}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.Equal(t, models.StatusOK{Status: models.StatusSuccess}, res)
			},
		},
		{
			name:           "cancelled",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true,"status":"CANCELLED"}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.Equal(t, models.StatusOK{Status: models.StatusCancelled}, res)
			},
		},
		{
			name:           "reference not known yet",
			mockStatusCode: http.StatusNotFound,
			mockBody:       `{"success":false,"error":"not found"}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.Equal(t, models.StatusNotFound{}, res)
			},
		},
		{
			name:           "bad reference",
			mockStatusCode: http.StatusBadRequest,
			mockBody:       `{"success":false}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.Equal(t, models.StatusRejected{Message: "Invalid transaction reference. Please contact support."}, res)
			},
		},
		{
			name:           "server error",
			mockStatusCode: http.StatusInternalServerError,
			check: func(t *testing.T, res models.StatusResult) {
				assert.IsType(t, models.StatusTransientError{}, res)
			},
		},
		{
			name:           "malformed",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.IsType(t, models.StatusTransientError{}, res)
			},
		},
		{
			name:           "unsuccessful body",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":false,"error":"upstream"}`,
			check: func(t *testing.T, res models.StatusResult) {
				require.IsType(t, models.StatusTransientError{}, res)
				assert.Contains(t, res.(models.StatusTransientError).Err.Error(), "upstream")
			},
		},
		{
			name:           "unknown status",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"success":true,"status":"PENDING"}`,
			check: func(t *testing.T, res models.StatusResult) {
				assert.IsType(t, models.StatusTransientError{}, res)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "LN-abc", r.URL.Query().Get("reference"))
				w.WriteHeader(tt.mockStatusCode)
				_, _ = w.Write([]byte(tt.mockBody))
			}))
			defer server.Close()

			res := newTestClient(server.URL, server.URL+"/transaction-status").CheckStatus(context.Background(), "LN-abc")
			tt.check(t, res)
		})
	}
}

func TestCheckStatus_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := newTestClient(url, url).CheckStatus(context.Background(), "LN-1")
	assert.IsType(t, models.StatusTransientError{}, res)
}

func TestCheckStatus_BadURL(t *testing.T) {
	res := newTestClient("", "not a url").CheckStatus(context.Background(), "LN-1")
	assert.IsType(t, models.StatusTransientError{}, res)
}

func TestBuildURLWithQuery(t *testing.T) {
	got, err := buildURLWithQuery("https://gw.example.com/api/transaction-status?x=1", map[string]string{"reference": "LN 1"})
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example.com/api/transaction-status?reference=LN+1&x=1", got)
}
