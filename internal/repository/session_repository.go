package repository

import (
	"errors"
	"fmt"
	"time"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
	"github.com/axellelanca/visitorpulse/internal/models"
	"gorm.io/gorm"
)

// SessionRepository est une interface qui définit les méthodes d'accès aux sessions
type SessionRepository interface {
	CreateSession(session *models.Session) error
	GetActiveSession(visitorID uint) (*models.Session, error)
	SaveSession(session *models.Session) error
	DeactivateStaleSessions(cutoff time.Time) (int64, error)
}

// GormSessionRepository est l'implémentation de l'interface SessionRepository utilisant GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository crée et retourne une nouvelle instance de GormSessionRepository.
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// CreateSession insère un nouvel enregistrement de session dans la base de données.
func (r *GormSessionRepository) CreateSession(session *models.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveSession returns the newest active session of a visitor.
// Racing first heartbeats can leave more than one active row; the newest wins.
func (r *GormSessionRepository) GetActiveSession(visitorID uint) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("visitor_id = ? AND is_active = ?", visitorID, true).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session for visitor %d: %w", visitorID, err)
	}
	return &session, nil
}

// SaveSession persiste toutes les colonnes d'une session existante.
func (r *GormSessionRepository) SaveSession(session *models.Session) error {
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("failed to save session %d: %w", session.ID, err)
	}
	return nil
}

// DeactivateStaleSessions marks every active session whose last heartbeat is before cutoff as inactive.
// Returns the number of sessions deactivated.
func (r *GormSessionRepository) DeactivateStaleSessions(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.Session{}).
		Where("is_active = ? AND last_heartbeat < ?", true, cutoff).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate sessions older than %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
