package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"github.com/EduQuest-2025/quizplayer-service/internal/services"
	"github.com/EduQuest-2025/quizplayer-service/internal/utils"
)

// WatchHandler streams the activity catalog over a websocket: one snapshot
// on connect, then a fresh snapshot on every refresh tick until the client
// disconnects.
type WatchHandler struct {
	BaseHandler
	activityService services.ActivityService
	upgrader        websocket.Upgrader
	refreshInterval time.Duration
}

type watchMessage struct {
	Type       string             `json:"type"`
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	SentAt     time.Time          `json:"sent_at"`
}

func NewWatchHandler(activityService services.ActivityService, logger utils.Logger) *WatchHandler {
	return &WatchHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		refreshInterval: 5 * time.Second,
	}
}

// WatchActivities upgrades the request and pushes catalog snapshots
func (h *WatchHandler) WatchActivities(c *gin.Context) {
	filters := repositories.ActivityFilters{
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.UnitVariant(kindStr)
		filters.Kind = &kind
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "Websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.LogRequest(c, "Activity watch opened", "kind", c.Query("kind"))

	// The reader exists only to observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.sendSnapshot(c, conn, filters); err != nil {
		return
	}

	ticker := time.NewTicker(h.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.sendSnapshot(c, conn, filters); err != nil {
				return
			}
		}
	}
}

func (h *WatchHandler) sendSnapshot(c *gin.Context, conn *websocket.Conn, filters repositories.ActivityFilters) error {
	resp, err := h.activityService.List(c.Request.Context(), filters)
	if err != nil {
		h.LogError(c, err, "Activity watch snapshot failed")
		return conn.WriteJSON(watchMessage{Type: "error", SentAt: time.Now().UTC()})
	}
	return conn.WriteJSON(watchMessage{
		Type:       "activities",
		Activities: resp.Activities,
		Total:      resp.Total,
		SentAt:     time.Now().UTC(),
	})
}
