package services

import (
	"context"
	"fmt"

	"github.com/axellelanca/visitorpulse/internal/models"
	"github.com/axellelanca/visitorpulse/internal/repository"
)

// HeartbeatResult is the outcome of one recorded heartbeat.
type HeartbeatResult struct {
	Visitor *models.Visitor
	Session *models.Session
	// NewCookieToken is set when the caller must issue the visitor cookie
	NewCookieToken string
}

// HeartbeatService records heartbeats: visitor resolution then session reconciliation,
// both inside a single transaction. The geo lookup runs before the transaction.
type HeartbeatService struct {
	store    repository.Store
	visitors *VisitorService
	sessions *SessionService
}

// NewHeartbeatService creates and returns a new instance of HeartbeatService.
func NewHeartbeatService(store repository.Store, visitors *VisitorService, sessions *SessionService) *HeartbeatService {
	return &HeartbeatService{
		store:    store,
		visitors: visitors,
		sessions: sessions,
	}
}

// RecordHeartbeat resolves the visitor for cookieToken and clientIP and extends its session.
// Nothing is persisted when an error is returned.
func (s *HeartbeatService) RecordHeartbeat(ctx context.Context, cookieToken, clientIP string) (*HeartbeatResult, error) {
	var result HeartbeatResult

	loc := s.visitors.Locate(ctx, s.store.Visitors(), cookieToken, clientIP)

	err := s.store.Transaction(ctx, func(visitors repository.VisitorRepository, sessions repository.SessionRepository) error {
		visitor, newToken, err := s.visitors.Resolve(visitors, cookieToken, clientIP, loc)
		if err != nil {
			return err
		}

		session, err := s.sessions.Reconcile(sessions, visitor)
		if err != nil {
			return err
		}

		result = HeartbeatResult{
			Visitor:        visitor,
			Session:        session,
			NewCookieToken: newToken,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return &result, nil
}
