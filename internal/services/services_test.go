package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/axellelanca/visitorpulse/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), 5000)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

// stubResolver returns loc for every lookup and counts the calls.
type stubResolver struct {
	loc   *models.Location
	calls int
}

func (s *stubResolver) Resolve(context.Context, string) *models.Location {
	s.calls++
	return s.loc
}

// clock is a manually advanced time source.
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func location(country, region, city string) *models.Location {
	return &models.Location{CountryCode: &country, Region: &region, City: &city}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
