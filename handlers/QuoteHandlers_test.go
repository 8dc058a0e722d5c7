package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/middleware"
	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The rejection paths of the submission pipeline run before any storage
// access, so these tests drive the handler with nil databases.
func newSubmitRouter(limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	pricing := services.NewPricingService(nil)
	emailSvc := services.NewEmailService(nil)

	r := gin.New()
	r.POST("/api/quotes", SubmitQuote(nil, nil, pricing, limiter, emailSvc))
	return r
}

func postSubmission(r *gin.Engine, identifier string, req models.QuoteSubmissionRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/api/quotes", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	if identifier != "" {
		httpReq.Header.Set("X-Forwarded-For", identifier)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func TestSubmitQuoteRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(30*time.Second, time.Hour, 5)
	r := newSubmitRouter(limiter)

	// Invalid payload still counts as an attempt only after the limiter;
	// the first request passes the limiter and fails validation.
	first := postSubmission(r, "203.0.113.7", models.QuoteSubmissionRequest{})
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := postSubmission(r, "203.0.113.7", models.QuoteSubmissionRequest{})
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var resp models.RateLimitResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp.Error)
	assert.Greater(t, resp.RetryAfterSeconds, 0)
	assert.LessOrEqual(t, resp.RetryAfterSeconds, 30)

	// A different client is not throttled.
	third := postSubmission(r, "198.51.100.9", models.QuoteSubmissionRequest{})
	assert.Equal(t, http.StatusBadRequest, third.Code)
}

func TestSubmitQuoteRejectsMaliciousContent(t *testing.T) {
	limiter := middleware.NewRateLimiter(0, time.Hour, 100)
	r := newSubmitRouter(limiter)

	req := validSubmission()
	req.Message = "1 UNION SELECT password FROM users"

	w := postSubmission(r, "203.0.113.7", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "malicious_content_detected", resp.Error)
}

func TestSubmitQuoteReturnsStructuredValidationErrors(t *testing.T) {
	limiter := middleware.NewRateLimiter(0, time.Hour, 100)
	r := newSubmitRouter(limiter)

	req := validSubmission()
	req.Items[0].Quantity = 0
	req.CustomerEmail = "not-an-email"

	w := postSubmission(r, "203.0.113.7", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)

	names := fieldNames(resp.Fields)
	assert.Contains(t, names, "items[0].quantity")
	assert.Contains(t, names, "customer_email")
}

func TestSubmitQuoteRejectsMalformedJSON(t *testing.T) {
	limiter := middleware.NewRateLimiter(0, time.Hour, 100)
	r := newSubmitRouter(limiter)

	httpReq := httptest.NewRequest("POST", "/api/quotes", bytes.NewReader([]byte(`{"items": [`)))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
