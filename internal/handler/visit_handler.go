package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/middleware"
	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/notify"
	"github.com/jengzang/placevisit-backend-go/internal/service"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// VisitHandler handles visit queries and the live visit stream
type VisitHandler struct {
	service   *service.VisitService
	broker    *notify.Broker
	heartbeat time.Duration
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(service *service.VisitService, broker *notify.Broker, heartbeat time.Duration) *VisitHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &VisitHandler{service: service, broker: broker, heartbeat: heartbeat}
}

// List handles GET /api/v1/visits
func (h *VisitHandler) List(c *gin.Context) {
	var filter models.VisitFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}
	filter.UserID = middleware.UserID(c)

	res, err := h.service.ListVisits(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, "Failed to get visits", err)
		return
	}
	response.Success(c, res)
}

// Get handles GET /api/v1/visits/:id
func (h *VisitHandler) Get(c *gin.Context) {
	visit, err := h.service.GetVisit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get visit", err)
		return
	}
	if visit == nil {
		response.NotFound(c, "Visit not found")
		return
	}
	response.Success(c, visit)
}

// Stream handles GET /api/v1/visits/stream. The first event is "ready";
// visit events follow under their type name, with periodic heartbeats.
func (h *VisitHandler) Stream(c *gin.Context) {
	userID := middleware.UserID(c)
	events, cancel := h.broker.Subscribe(userID)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	ready := false
	c.Stream(func(w io.Writer) bool {
		if !ready {
			ready = true
			c.SSEvent("ready", gin.H{"userId": userID})
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": t.UTC()})
			return true
		}
	})
}
