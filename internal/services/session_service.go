package services

import (
	"errors"
	"time"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
	"github.com/axellelanca/visitorpulse/internal/models"
	"github.com/axellelanca/visitorpulse/internal/repository"
)

// SessionService keeps the active session of a visitor alive.
// It never deactivates a session; expiry belongs to the session monitor.
type SessionService struct {
	now func() time.Time
}

// NewSessionService creates and returns a new instance of SessionService.
func NewSessionService() *SessionService {
	return &SessionService{now: utcNow}
}

// Reconcile extends the active session of visitor by one action, or opens a new one.
// A session deactivated between the read and the write is overwritten last-writer-wins.
func (s *SessionService) Reconcile(repo repository.SessionRepository, visitor *models.Visitor) (*models.Session, error) {
	now := s.now()

	session, err := repo.GetActiveSession(visitor.ID)
	if err != nil && !errors.Is(err, customerrors.ErrSessionNotFound) {
		return nil, err
	}

	if session != nil {
		session.ActionCount++
		session.LastHeartbeat = now
		if err := repo.SaveSession(session); err != nil {
			return nil, err
		}
		return session, nil
	}

	session = &models.Session{
		VisitorID:     visitor.ID,
		StartTime:     now,
		LastHeartbeat: now,
		ActionCount:   1,
		IsActive:      true,
	}
	if err := repo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}
