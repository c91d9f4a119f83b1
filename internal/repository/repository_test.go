package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axellelanca/visitorpulse/internal/database"
	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
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

func strPtr(s string) *string { return &s }

func TestVisitorRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewVisitorRepository(db)
	now := time.Now().UTC()

	_, err := repo.GetVisitorByCookieID("missing")
	assert.ErrorIs(t, err, customerrors.ErrVisitorNotFound)

	v := &models.Visitor{CookieID: "tok", IPHash: "h1", CreatedAt: now, LastSeenAt: now}
	require.NoError(t, repo.CreateVisitor(v))

	dup := &models.Visitor{CookieID: "tok", IPHash: "h2", CreatedAt: now, LastSeenAt: now}
	assert.Error(t, repo.CreateVisitor(dup), "cookie_id is unique")

	v.IPHash = "h3"
	v.CountryCode = strPtr("NL")
	require.NoError(t, repo.SaveVisitor(v))

	got, err := repo.GetVisitorByCookieID("tok")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "h3", got.IPHash)
	assert.Equal(t, "NL", *got.CountryCode)
}

func TestSessionRepositoryNewestActiveWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	now := time.Now().UTC()

	_, err := repo.GetActiveSession(1)
	assert.ErrorIs(t, err, customerrors.ErrSessionNotFound)

	older := &models.Session{VisitorID: 1, StartTime: now, LastHeartbeat: now, ActionCount: 1, IsActive: true}
	newer := &models.Session{VisitorID: 1, StartTime: now, LastHeartbeat: now, ActionCount: 1, IsActive: true}
	require.NoError(t, repo.CreateSession(older))
	require.NoError(t, repo.CreateSession(newer))

	got, err := repo.GetActiveSession(1)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestDeactivateStaleSessions(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	now := time.Now().UTC()

	stale := &models.Session{VisitorID: 1, StartTime: now.Add(-2 * time.Hour), LastHeartbeat: now.Add(-time.Hour), ActionCount: 4, IsActive: true}
	fresh := &models.Session{VisitorID: 2, StartTime: now, LastHeartbeat: now, ActionCount: 1, IsActive: true}
	require.NoError(t, repo.CreateSession(stale))
	require.NoError(t, repo.CreateSession(fresh))

	n, err := repo.DeactivateStaleSessions(now.Add(-30 * time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetActiveSession(1)
	assert.ErrorIs(t, err, customerrors.ErrSessionNotFound)
	_, err = repo.GetActiveSession(2)
	assert.NoError(t, err)

	n, err = repo.DeactivateStaleSessions(now.Add(-30 * time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreTransaction(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	now := time.Now().UTC()

	err := store.Transaction(context.Background(), func(visitors VisitorRepository, sessions SessionRepository) error {
		v := &models.Visitor{CookieID: "committed", IPHash: "h", CreatedAt: now, LastSeenAt: now}
		if err := visitors.CreateVisitor(v); err != nil {
			return err
		}
		return sessions.CreateSession(&models.Session{VisitorID: v.ID, StartTime: now, LastHeartbeat: now, ActionCount: 1, IsActive: true})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Transaction(context.Background(), func(visitors VisitorRepository, _ SessionRepository) error {
		v := &models.Visitor{CookieID: "rolled-back", IPHash: "h", CreatedAt: now, LastSeenAt: now}
		if err := visitors.CreateVisitor(v); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	visitors := store.Visitors()
	_, err = visitors.GetVisitorByCookieID("committed")
	assert.NoError(t, err)
	_, err = visitors.GetVisitorByCookieID("rolled-back")
	assert.ErrorIs(t, err, customerrors.ErrVisitorNotFound)
}

func TestStoreConcurrentReadThenWrite(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	now := time.Now().UTC()

	const writers = 16
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Transaction(context.Background(), func(visitors VisitorRepository, _ SessionRepository) error {
				cookie := fmt.Sprintf("visitor-%d", i)
				// Read first: a deferred transaction would fail its lock upgrade here
				if _, err := visitors.GetVisitorByCookieID(cookie); !errors.Is(err, customerrors.ErrVisitorNotFound) {
					return err
				}
				return visitors.CreateVisitor(&models.Visitor{CookieID: cookie, IPHash: "h", CreatedAt: now, LastSeenAt: now})
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "writer %d", i)
	}
	var count int64
	require.NoError(t, db.Model(&models.Visitor{}).Count(&count).Error)
	assert.EqualValues(t, writers, count)
}

func TestComputeStats(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	visitors := NewVisitorRepository(db)
	sessions := NewSessionRepository(db)

	seed := []struct {
		cookie   string
		country  *string
		lastSeen time.Time
		actions  []int
		active   bool
	}{
		{"a", strPtr("FR"), now.Add(-time.Hour), []int{3, 2}, true},
		{"b", strPtr("FR"), now.Add(-48 * time.Hour), []int{1}, false},
		{"c", strPtr("US"), now.Add(-2 * time.Hour), []int{4}, true},
		{"d", nil, now.Add(-72 * time.Hour), nil, false},
	}
	for _, s := range seed {
		v := &models.Visitor{CookieID: s.cookie, IPHash: "h", CountryCode: s.country, CreatedAt: s.lastSeen, LastSeenAt: s.lastSeen}
		require.NoError(t, visitors.CreateVisitor(v))
		for i, n := range s.actions {
			active := s.active && i == len(s.actions)-1
			require.NoError(t, sessions.CreateSession(&models.Session{
				VisitorID: v.ID, StartTime: s.lastSeen, LastHeartbeat: s.lastSeen, ActionCount: n, IsActive: active,
			}))
		}
	}

	repo := NewStatsRepository(db)
	repo.now = func() time.Time { return now }

	snapshot, err := repo.ComputeStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, snapshot.TotalVisitors)
	assert.EqualValues(t, 2, snapshot.VisitorsLast24h)
	assert.EqualValues(t, 4, snapshot.TotalSessions)
	assert.EqualValues(t, 2, snapshot.ActiveSessions)
	assert.EqualValues(t, 10, snapshot.TotalActions)
	assert.InDelta(t, 2.5, snapshot.AvgActionsPerSession, 0.0001)
	assert.Equal(t, []models.CountryCount{{CountryCode: "FR", Visitors: 2}, {CountryCode: "US", Visitors: 1}}, snapshot.TopCountries)
	assert.Equal(t, now, snapshot.GeneratedAt)
}

func TestComputeStatsEmpty(t *testing.T) {
	snapshot, err := NewStatsRepository(newTestDB(t)).ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snapshot.TotalVisitors)
	assert.Zero(t, snapshot.AvgActionsPerSession)
	assert.NotNil(t, snapshot.TopCountries)
	assert.Empty(t, snapshot.TopCountries)
}
