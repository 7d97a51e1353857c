package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/session"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"activity not found", services.ErrActivityNotFound, http.StatusNotFound, "content_not_found"},
		{"activity empty", services.ErrActivityEmpty, http.StatusUnprocessableEntity, "content_empty"},
		{"activity malformed", services.ErrActivityMalformed, http.StatusUnprocessableEntity, "malformed_unit"},
		{"wrapped malformed", errors.Join(services.ErrActivityMalformed, errors.New("unit 3")), http.StatusUnprocessableEntity, "malformed_unit"},
		{"duplicate title", services.ErrActivityDuplicateTitle, http.StatusConflict, ""},
		{"session not found", services.ErrSessionNotFound, http.StatusNotFound, ""},
		{"session not finished", services.ErrSessionNotFinished, http.StatusConflict, ""},
		{"session finished", session.ErrSessionFinished, http.StatusConflict, ""},
		{"page already submitted", session.ErrPageAlreadySubmitted, http.StatusConflict, ""},
		{"session closed", session.ErrSessionClosed, http.StatusGone, ""},
		{"validation error", services.NewValidationError("title", "is required", nil), http.StatusBadRequest, ""},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			handleServiceError(c, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantCode != "" {
				assert.Contains(t, recorder.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	assert.Equal(t, uint(42), parseIDParam(c, "id"))

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	c.Params = gin.Params{{Key: "id", Value: "not-a-number"}}
	assert.Equal(t, uint(0), parseIDParam(c, "id"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestParseStringIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Params = gin.Params{{Key: "id", Value: "  "}}
	assert.Equal(t, "", parseStringIDParam(c, "id"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
