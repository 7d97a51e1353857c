package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/utils"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	playerService services.PlayerService
	validator     *validator.Validator
}

type StartSessionRequest struct {
	ActivityID uint `json:"activity_id" validate:"required"`
}

func NewSessionHandler(
	playerService services.PlayerService,
	v *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:   NewBaseHandler(logger),
		playerService: playerService,
		validator:     v,
	}
}

// StartSession loads an activity and opens a play session over it. Load
// failures abort here and no session is created.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting session", "activity_id", req.ActivityID)

	view, err := h.playerService.Start(c.Request.Context(), req.ActivityID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetPage returns the current page of the session
func (h *SessionHandler) GetPage(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	view, err := h.playerService.GetPage(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitPage evaluates the answers for the current page
func (h *SessionHandler) SubmitPage(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.SubmitPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting page", "session_id", sessionID)

	result, err := h.playerService.SubmitPage(c.Request.Context(), sessionID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Advance moves the session to the next page
func (h *SessionHandler) Advance(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	view, err := h.playerService.Advance(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSummary returns the terminal summary of a finished session
func (h *SessionHandler) GetSummary(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	summary, err := h.playerService.Summary(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CloseSession tears the session down, discarding unfinished progress
func (h *SessionHandler) CloseSession(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Closing session", "session_id", sessionID)

	if err := h.playerService.Close(c.Request.Context(), sessionID); err != nil {
		handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session closed", nil)
}
