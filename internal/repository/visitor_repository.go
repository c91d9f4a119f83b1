package repository

import (
	"errors"
	"fmt"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
	"github.com/axellelanca/visitorpulse/internal/models"
	"gorm.io/gorm"
)

// VisitorRepository est une interface qui définit les méthodes d'accès aux visiteurs
type VisitorRepository interface {
	CreateVisitor(visitor *models.Visitor) error
	GetVisitorByCookieID(cookieID string) (*models.Visitor, error)
	SaveVisitor(visitor *models.Visitor) error
}

// GormVisitorRepository est l'implémentation de VisitorRepository utilisant GORM.
type GormVisitorRepository struct {
	db *gorm.DB
}

// NewVisitorRepository crée et retourne une nouvelle instance de GormVisitorRepository.
// db may be a transaction handle.
func NewVisitorRepository(db *gorm.DB) *GormVisitorRepository {
	return &GormVisitorRepository{db: db}
}

// CreateVisitor insère un nouveau visiteur dans la base de données.
func (r *GormVisitorRepository) CreateVisitor(visitor *models.Visitor) error {
	if err := r.db.Create(visitor).Error; err != nil {
		return fmt.Errorf("failed to create visitor: %w", err)
	}
	return nil
}

// GetVisitorByCookieID récupère un visiteur à partir du jeton de son cookie.
// Returns customerrors.ErrVisitorNotFound when no visitor holds the token.
func (r *GormVisitorRepository) GetVisitorByCookieID(cookieID string) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := r.db.Where("cookie_id = ?", cookieID).First(&visitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrVisitorNotFound
		}
		return nil, fmt.Errorf("failed to get visitor by cookie: %w", err)
	}
	return &visitor, nil
}

// SaveVisitor persiste toutes les colonnes d'un visiteur existant.
func (r *GormVisitorRepository) SaveVisitor(visitor *models.Visitor) error {
	if err := r.db.Save(visitor).Error; err != nil {
		return fmt.Errorf("failed to save visitor %d: %w", visitor.ID, err)
	}
	return nil
}
