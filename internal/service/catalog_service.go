package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/repository"
	"github.com/jengzang/placevisit-backend-go/internal/spatial"
)

// CatalogService handles the caller's trips, regions and places
type CatalogService struct {
	trips  *repository.TripRepository
	places *repository.PlaceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(trips *repository.TripRepository, places *repository.PlaceRepository) *CatalogService {
	return &CatalogService{trips: trips, places: places}
}

// ListTrips returns the caller's trips
func (s *CatalogService) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	trips, err := s.trips.ListTrips(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// CreateTrip creates a trip for the caller
func (s *CatalogService) CreateTrip(ctx context.Context, userID, name string) (*models.Trip, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	return s.trips.CreateTrip(ctx, userID, name)
}

// CreateRegion creates a region under one of the caller's trips
func (s *CatalogService) CreateRegion(ctx context.Context, userID string, tripID int64, name string) (*models.Region, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	return s.trips.CreateRegion(ctx, userID, tripID, name)
}

// CreatePlace creates a place under one of the caller's regions
func (s *CatalogService) CreatePlace(ctx context.Context, userID string, p *models.Place) error {
	name, err := requireName(p.Name)
	if err != nil {
		return err
	}
	p.Name = name
	if !spatial.ValidCoordinate(p.Latitude, p.Longitude) {
		return fmt.Errorf("%w: coordinate %v,%v out of range", ErrInvalidCatalog, p.Latitude, p.Longitude)
	}
	return s.places.CreatePlace(ctx, userID, p)
}

// RenamePlace renames one of the caller's places
func (s *CatalogService) RenamePlace(ctx context.Context, userID string, placeID int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	return s.places.RenamePlace(ctx, userID, placeID, name)
}

// DeletePlace deletes one of the caller's places
func (s *CatalogService) DeletePlace(ctx context.Context, userID string, placeID int64) error {
	return s.places.DeletePlace(ctx, userID, placeID)
}

// ErrInvalidCatalog is returned for malformed catalog input
var ErrInvalidCatalog = errors.New("invalid catalog input")

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidCatalog)
	}
	return name, nil
}
