package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/middleware"
	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/service"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// CatalogHandler handles HTTP requests for trips, regions and places
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type placeRequest struct {
	Name      string   `json:"name" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Notes     string   `json:"notes"`
}

// ListTrips handles GET /api/v1/trips
func (h *CatalogHandler) ListTrips(c *gin.Context) {
	trips, err := h.service.ListTrips(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, "Failed to get trips", err)
		return
	}
	response.Success(c, trips)
}

// CreateTrip handles POST /api/v1/trips
func (h *CatalogHandler) CreateTrip(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid trip body", err)
		return
	}
	trip, err := h.service.CreateTrip(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, trip)
}

// CreateRegion handles POST /api/v1/trips/:id/regions
func (h *CatalogHandler) CreateRegion(c *gin.Context) {
	tripID, ok := idParam(c, "Invalid trip ID")
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid region body", err)
		return
	}
	region, err := h.service.CreateRegion(c.Request.Context(), middleware.UserID(c), tripID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, region)
}

// CreatePlace handles POST /api/v1/regions/:id/places
func (h *CatalogHandler) CreatePlace(c *gin.Context) {
	regionID, ok := idParam(c, "Invalid region ID")
	if !ok {
		return
	}
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid place body", err)
		return
	}
	place := &models.Place{
		RegionID:  regionID,
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Notes:     req.Notes,
	}
	if err := h.service.CreatePlace(c.Request.Context(), middleware.UserID(c), place); err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, place)
}

// RenamePlace handles PATCH /api/v1/places/:id
func (h *CatalogHandler) RenamePlace(c *gin.Context) {
	placeID, ok := idParam(c, "Invalid place ID")
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid place body", err)
		return
	}
	if err := h.service.RenamePlace(c.Request.Context(), middleware.UserID(c), placeID, req.Name); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": placeID, "name": req.Name})
}

// DeletePlace handles DELETE /api/v1/places/:id
func (h *CatalogHandler) DeletePlace(c *gin.Context) {
	placeID, ok := idParam(c, "Invalid place ID")
	if !ok {
		return
	}
	if err := h.service.DeletePlace(c.Request.Context(), middleware.UserID(c), placeID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": placeID})
}

func idParam(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, message, err)
		return 0, false
	}
	return id, true
}
