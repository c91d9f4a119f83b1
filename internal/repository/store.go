package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store hands out repositories bound to a single transaction.
type Store interface {
	// Visitors returns a repository outside any transaction, for reads that
	// must not hold the write lock.
	Visitors() VisitorRepository
	// Transaction runs fn in one transaction. It commits when fn returns nil
	// and rolls back when fn returns an error or panics.
	Transaction(ctx context.Context, fn func(visitors VisitorRepository, sessions SessionRepository) error) error
}

// GormStore est l'implémentation de Store utilisant GORM.
type GormStore struct {
	db *gorm.DB
}

// NewStore crée et retourne une nouvelle instance de GormStore.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Visitors() VisitorRepository {
	return NewVisitorRepository(s.db)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(visitors VisitorRepository, sessions SessionRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewVisitorRepository(tx), NewSessionRepository(tx))
	})
}
