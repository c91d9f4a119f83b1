package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/axellelanca/visitorpulse/internal/models"
	"gorm.io/gorm"
)

// topCountriesLimit caps the number of countries listed in a snapshot.
const topCountriesLimit = 10

// GormStatsRepository computes the statistics snapshot with aggregate queries.
type GormStatsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsRepository crée et retourne une nouvelle instance de GormStatsRepository.
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ComputeStats builds a fresh StatsSnapshot from the visitors and sessions tables.
func (r *GormStatsRepository) ComputeStats(ctx context.Context) (*models.StatsSnapshot, error) {
	db := r.db.WithContext(ctx)
	now := r.now()
	snapshot := &models.StatsSnapshot{
		TopCountries: []models.CountryCount{},
		GeneratedAt:  now,
	}

	if err := db.Model(&models.Visitor{}).Count(&snapshot.TotalVisitors).Error; err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	if err := db.Model(&models.Visitor{}).
		Where("last_seen_at >= ?", now.Add(-24*time.Hour)).
		Count(&snapshot.VisitorsLast24h).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent visitors: %w", err)
	}
	if err := db.Model(&models.Session{}).Count(&snapshot.TotalSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := db.Model(&models.Session{}).
		Where("is_active = ?", true).
		Count(&snapshot.ActiveSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	if err := db.Model(&models.Session{}).
		Select("COALESCE(SUM(action_count), 0)").
		Scan(&snapshot.TotalActions).Error; err != nil {
		return nil, fmt.Errorf("failed to sum session actions: %w", err)
	}
	if snapshot.TotalSessions > 0 {
		snapshot.AvgActionsPerSession = float64(snapshot.TotalActions) / float64(snapshot.TotalSessions)
	}

	if err := db.Model(&models.Visitor{}).
		Select("country_code, COUNT(*) AS visitors").
		Where("country_code IS NOT NULL AND country_code <> ''").
		Group("country_code").
		Order("visitors DESC, country_code ASC").
		Limit(topCountriesLimit).
		Scan(&snapshot.TopCountries).Error; err != nil {
		return nil, fmt.Errorf("failed to rank countries: %w", err)
	}

	return snapshot, nil
}
