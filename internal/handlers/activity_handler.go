package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/utils"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
	importExport    services.ImportExportService
	validator       *validator.Validator
}

func NewActivityHandler(
	activityService services.ActivityService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
		importExport:    importExport,
		validator:       v,
	}
}

// CreateActivity creates a new activity with its unit sequence
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req services.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating activity", "title", req.Title, "kind", req.Kind)

	activity, err := h.activityService.Create(c.Request.Context(), &req, creatorID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// GetActivity returns one activity with its decoded unit count
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// ListActivities lists activities with catalog filters
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	filters := repositories.ActivityFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.UnitVariant(kindStr)
		filters.Kind = &kind
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ActivityStatus(statusStr)
		filters.Status = &status
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	resp, err := h.activityService.List(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateActivity applies a partial update to an activity
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating activity", "activity_id", id)

	activity, err := h.activityService.Update(c.Request.Context(), id, &req, creatorID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// DeleteActivity soft-deletes an activity
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting activity", "activity_id", id)

	if err := h.activityService.Delete(c.Request.Context(), id, creatorID(c)); err != nil {
		handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Activity deleted", nil)
}

// ImportUnits appends units from an uploaded CSV or Excel sheet
func (h *ActivityHandler) ImportUnits(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing upload",
			Details: "multipart field 'file' is required",
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing units", "activity_id", id, "filename", header.Filename)

	result, err := h.importExport.ImportUnitsFromFile(c.Request.Context(), file, header.Filename, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportUnits streams the activity's unit sheet as CSV or XLSX
func (h *ActivityHandler) ExportUnits(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	format := c.DefaultQuery("format", "csv")
	h.LogRequest(c, "Exporting units", "activity_id", id, "format", format)

	switch format {
	case "csv":
		payload, err := h.importExport.ExportUnitsToCSV(c.Request.Context(), id)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="units.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "xlsx":
		payload, err := h.importExport.ExportUnitsToExcel(c.Request.Context(), id)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="units.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}

// creatorID reads the authenticated user set by upstream middleware; this
// service runs behind a gateway that owns authentication.
func creatorID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
