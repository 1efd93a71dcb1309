package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flexprice/notebilling/internal/config"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/testutil"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	return newReportingRouter(handler, &testutil.FakeReporter{})
}

func newReportingRouter(handler gin.HandlerFunc, reporter *testutil.FakeReporter) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware, ErrorHandler(logger.NewNopLogger(), reporter))
	r.GET("/test", handler)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			err:         ierr.NewError("note missing").WithHint("Delivery note not found").Mark(ierr.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Delivery note not found",
		},
		{
			name:        "validation",
			err:         ierr.NewError("bad quantity").WithHint("Quantity must be at least 1").Mark(ierr.ErrValidation),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Quantity must be at least 1",
		},
		{
			name:        "already invoiced",
			err:         ierr.NewError("exists").WithHint("Already invoiced").Mark(ierr.ErrAlreadyExists),
			wantStatus:  http.StatusConflict,
			wantMessage: "Already invoiced",
		},
		{
			name:        "duplicate warning",
			err:         ierr.NewError("dup").WithHint("Confirm to register anyway").Mark(ierr.ErrDuplicateWarning),
			wantStatus:  http.StatusConflict,
			wantMessage: "Confirm to register anyway",
		},
		{
			name:        "recognizer",
			err:         ierr.NewError("model down").WithHint("The image could not be read").Mark(ierr.ErrRecognition),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "The image could not be read",
		},
		{
			name:        "unmarked error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ierr.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Error.Display)
			assert.Equal(t, ierr.KindOf(tt.err).Code(), resp.Error.Code)
		})
	}
}

func TestErrorHandler_UnmarkedIsSystemError(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp ierr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "system_error", resp.Error.Code)
}

func TestErrorHandler_ReportsServerErrors(t *testing.T) {
	reporter := &testutil.FakeReporter{}
	dbErr := ierr.NewError("connection reset").Mark(ierr.ErrDatabase)
	r := newReportingRouter(func(c *gin.Context) {
		_ = c.Error(dbErr)
	}, reporter)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	reported := reporter.Reported()
	require.Len(t, reported, 1)
	assert.Equal(t, dbErr, reported[0].Err)
	assert.Equal(t, "GET /test", reported[0].Tags["route"])
	assert.Equal(t, "500", reported[0].Tags["status"])
	assert.Equal(t, ierr.ErrDatabase.Code(), reported[0].Tags["code"])
}

func TestErrorHandler_ClientErrorsAreNotReported(t *testing.T) {
	reporter := &testutil.FakeReporter{}
	r := newReportingRouter(func(c *gin.Context) {
		_ = c.Error(ierr.NewError("missing").Mark(ierr.ErrNotFound))
	}, reporter)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, reporter.Reported())
}

func TestSentryMiddleware_DisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(SentryMiddleware(config.GetDefaultConfig()))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler_NoError(t *testing.T) {
	r := newTestRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	var requestID, userID string
	r := newTestRouter(func(c *gin.Context) {
		requestID = types.GetRequestID(c.Request.Context())
		userID = types.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, w.Header().Get(types.HeaderRequestID))
	assert.Equal(t, types.DefaultUserID, userID)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(types.HeaderRequestID, "req-1")
	req.Header.Set(types.HeaderUserID, "clerk")
	w = serve(r, req)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "req-1", w.Header().Get(types.HeaderRequestID))
	assert.Equal(t, "clerk", userID)
}
