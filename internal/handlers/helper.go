package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/session"
)

// parseIDParam reads a numeric path parameter; on failure it writes the 400
// itself and returns 0.
func parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0
	}
	return uint(id)
}

// parseStringIDParam reads a non-empty string path parameter; on failure it
// writes the 400 itself and returns "".
func parseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// handleServiceError maps service sentinels onto HTTP status codes.
func handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}
	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationError,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Activity not found",
			Code:    "content_not_found",
		})
	case errors.Is(err, services.ErrActivityEmpty):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Activity has no question units",
			Code:    "content_empty",
		})
	case errors.Is(err, services.ErrActivityMalformed):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Activity contains a malformed question unit",
			Code:    "malformed_unit",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrActivityDuplicateTitle):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Activity title already exists",
		})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrSessionNotFinished):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session has not finished yet",
		})
	case errors.Is(err, session.ErrSessionFinished):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session has already finished",
		})
	case errors.Is(err, session.ErrPageAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Answers already submitted for this page",
		})
	case errors.Is(err, session.ErrSessionClosed):
		c.JSON(http.StatusGone, ErrorResponse{
			Message: "Session has been closed",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
