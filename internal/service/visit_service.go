package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/placevisit-backend-go/internal/detection"
	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/repository"
	"github.com/jengzang/placevisit-backend-go/internal/spatial"
)

// MaxBatchSize bounds the pings accepted by one batch request
const MaxBatchSize = 500

// ErrInvalidPing marks pings rejected before detection runs
var ErrInvalidPing = errors.New("invalid ping")

// PingProcessor runs visit detection for one ping
type PingProcessor interface {
	ProcessPing(ctx context.Context, ping models.Ping) (detection.Outcome, error)
}

// PingResult is the outcome of one ingested ping
type PingResult struct {
	Outcome detection.Outcome `json:"outcome"`
}

// BatchResult reports how far a batch got. Processed pings stay processed
// when a later one fails.
type BatchResult struct {
	Processed int                 `json:"processed"`
	Outcomes  []detection.Outcome `json:"outcomes"`
}

// VisitService handles ping ingestion and visit queries
type VisitService struct {
	processor PingProcessor
	repo      *repository.VisitRepository
}

// NewVisitService creates a new visit service
func NewVisitService(processor PingProcessor, repo *repository.VisitRepository) *VisitService {
	return &VisitService{processor: processor, repo: repo}
}

// IngestPing validates and processes a single ping of userID
func (s *VisitService) IngestPing(ctx context.Context, userID string, req models.PingRequest) (PingResult, error) {
	ping, err := toPing(userID, req)
	if err != nil {
		return PingResult{}, err
	}
	outcome, err := s.processor.ProcessPing(ctx, ping)
	if err != nil {
		return PingResult{}, err
	}
	return PingResult{Outcome: outcome}, nil
}

// IngestBatch processes pings in timestamp order and stops at the first failure
func (s *VisitService) IngestBatch(ctx context.Context, userID string, reqs []models.PingRequest) (BatchResult, error) {
	if len(reqs) == 0 {
		return BatchResult{}, fmt.Errorf("%w: empty batch", ErrInvalidPing)
	}
	if len(reqs) > MaxBatchSize {
		return BatchResult{}, fmt.Errorf("%w: batch of %d exceeds %d", ErrInvalidPing, len(reqs), MaxBatchSize)
	}

	pings := make([]models.Ping, 0, len(reqs))
	for i, req := range reqs {
		if req.Timestamp == nil {
			return BatchResult{}, fmt.Errorf("%w: ping %d has no timestamp", ErrInvalidPing, i)
		}
		p, err := toPing(userID, req)
		if err != nil {
			return BatchResult{}, fmt.Errorf("ping %d: %w", i, err)
		}
		pings = append(pings, p)
	}
	sort.SliceStable(pings, func(i, j int) bool { return pings[i].At.Before(pings[j].At) })

	res := BatchResult{Outcomes: make([]detection.Outcome, 0, len(pings))}
	for _, p := range pings {
		outcome, err := s.processor.ProcessPing(ctx, p)
		if err != nil {
			return res, err
		}
		res.Processed++
		res.Outcomes = append(res.Outcomes, outcome)
	}
	return res, nil
}

// ListVisits retrieves the caller's visits with filtering and pagination
func (s *VisitService) ListVisits(ctx context.Context, filter models.VisitFilter) (*models.VisitsResponse, error) {
	filter.Normalize()
	visits, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []models.PlaceVisitEvent{}
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}
	return &models.VisitsResponse{
		Data:       visits,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetVisit retrieves one visit of the caller, nil when absent
func (s *VisitService) GetVisit(ctx context.Context, userID, id string) (*models.PlaceVisitEvent, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func toPing(userID string, req models.PingRequest) (models.Ping, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return models.Ping{}, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidPing)
	}
	if !spatial.ValidCoordinate(*req.Latitude, *req.Longitude) {
		return models.Ping{}, fmt.Errorf("%w: coordinate %v,%v out of range", ErrInvalidPing, *req.Latitude, *req.Longitude)
	}
	if req.Accuracy != nil && (*req.Accuracy < 0 || math.IsNaN(*req.Accuracy) || math.IsInf(*req.Accuracy, 0)) {
		return models.Ping{}, fmt.Errorf("%w: accuracy must be a non-negative number", ErrInvalidPing)
	}

	p := models.Ping{
		UserID:         userID,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		AccuracyMeters: req.Accuracy,
	}
	if req.Timestamp != nil {
		p.At = req.Timestamp.UTC()
	}
	return p, nil
}
