package services

import (
	"context"

	"github.com/axellelanca/visitorpulse/internal/models"
)

// StatsAggregator computes the statistics snapshot.
type StatsAggregator interface {
	ComputeStats(ctx context.Context) (*models.StatsSnapshot, error)
}

// StatsService serves the snapshot produced by its aggregator as is.
type StatsService struct {
	aggregator StatsAggregator
}

// NewStatsService creates and returns a new instance of StatsService.
func NewStatsService(aggregator StatsAggregator) *StatsService {
	return &StatsService{aggregator: aggregator}
}

// GetStats returns the current statistics snapshot.
func (s *StatsService) GetStats(ctx context.Context) (*models.StatsSnapshot, error) {
	return s.aggregator.ComputeStats(ctx)
}
