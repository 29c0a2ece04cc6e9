package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/middleware"
	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/service"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// PingHandler handles location ping ingestion
type PingHandler struct {
	service *service.VisitService
}

// NewPingHandler creates a new ping handler
func NewPingHandler(service *service.VisitService) *PingHandler {
	return &PingHandler{service: service}
}

// Ingest handles POST /api/v1/pings
func (h *PingHandler) Ingest(c *gin.Context) {
	var req models.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid ping body", err)
		return
	}

	res, err := h.service.IngestPing(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// IngestBatch handles POST /api/v1/pings/batch
func (h *PingHandler) IngestBatch(c *gin.Context) {
	var reqs []models.PingRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.BadRequest(c, "Invalid batch body", err)
		return
	}

	res, err := h.service.IngestBatch(c.Request.Context(), middleware.UserID(c), reqs)
	if err != nil {
		code, message := statusFor(err)
		_ = c.Error(err)
		// report how far the batch got so the client can resume
		c.AbortWithStatusJSON(code, response.Response{Code: code, Message: message, Data: res})
		return
	}
	c.JSON(http.StatusOK, response.Response{Code: 0, Message: "success", Data: res})
}
