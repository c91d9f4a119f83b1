// Package services contains the business logic layer of the visitor tracking service
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
	"github.com/axellelanca/visitorpulse/internal/geo"
	"github.com/axellelanca/visitorpulse/internal/models"
	"github.com/axellelanca/visitorpulse/internal/repository"
)

// VisitorService resolves the durable visitor behind a cookie token and a client IP.
type VisitorService struct {
	geo      geo.Resolver
	newToken func() string
	now      func() time.Time
}

// NewVisitorService creates a VisitorService that mints UUIDv4 cookie tokens.
func NewVisitorService(resolver geo.Resolver) *VisitorService {
	if resolver == nil {
		resolver = geo.Noop{}
	}
	return &VisitorService{
		geo:      resolver,
		newToken: func() string { return uuid.NewString() },
		now:      utcNow,
	}
}

// HashIP returns the hex encoded SHA-256 of ip.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// Locate returns the location to record for this heartbeat, or nil when no
// lookup is needed or the lookup yields nothing. A lookup is needed for a new
// visitor and for a known visitor whose IP changed.
//
// It reads through repo and must run before the heartbeat transaction so that
// the geo call never holds the database write lock.
func (s *VisitorService) Locate(ctx context.Context, repo repository.VisitorRepository, cookieToken, clientIP string) *models.Location {
	if cookieToken != "" {
		visitor, err := repo.GetVisitorByCookieID(cookieToken)
		if err == nil && visitor.IPHash == HashIP(clientIP) {
			return nil
		}
	}
	return s.geo.Resolve(ctx, clientIP)
}

// Resolve finds or creates the visitor for cookieToken, using repo for every read and write.
// An empty cookieToken means the request carried no cookie. loc comes from Locate
// and is applied to a new visitor or to a known one whose IP changed.
//
// Returns:
//   - *models.Visitor: the persisted visitor
//   - string: a freshly minted token the caller must set as cookie, or "" when the client already holds one
//   - error: any storage error
func (s *VisitorService) Resolve(repo repository.VisitorRepository, cookieToken, clientIP string, loc *models.Location) (*models.Visitor, string, error) {
	ipHash := HashIP(clientIP)
	now := s.now()

	if cookieToken == "" {
		token := s.newToken()
		visitor, err := s.create(repo, token, ipHash, loc, now)
		if err != nil {
			return nil, "", err
		}
		return visitor, token, nil
	}

	visitor, err := repo.GetVisitorByCookieID(cookieToken)
	if err != nil {
		if errors.Is(err, customerrors.ErrVisitorNotFound) {
			// Stale or forged cookie: adopt the presented token
			visitor, err = s.create(repo, cookieToken, ipHash, loc, now)
			if err != nil {
				return nil, "", err
			}
			return visitor, "", nil
		}
		return nil, "", err
	}

	if visitor.IPHash != ipHash {
		visitor.IPHash = ipHash
		visitor.ApplyLocation(loc)
	}
	visitor.LastSeenAt = now

	if err := repo.SaveVisitor(visitor); err != nil {
		return nil, "", err
	}
	return visitor, "", nil
}

func (s *VisitorService) create(repo repository.VisitorRepository, token, ipHash string, loc *models.Location, now time.Time) (*models.Visitor, error) {
	visitor := &models.Visitor{
		CookieID:   token,
		IPHash:     ipHash,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	visitor.ApplyLocation(loc)

	if err := repo.CreateVisitor(visitor); err != nil {
		return nil, fmt.Errorf("failed to register visitor: %w", err)
	}
	return visitor, nil
}

// utcNow is the clock of every service; timestamps are stored in UTC so that
// SQLite compares them correctly as text.
func utcNow() time.Time {
	return time.Now().UTC()
}
