package repository

import (
	"context"

	"gorm.io/gorm"
)

// QueryRepository runs caller-supplied SQL text as is.
type QueryRepository interface {
	RawQuery(ctx context.Context, sql string) (columns []string, rows [][]any, err error)
}

// GormQueryRepository est l'implémentation de QueryRepository utilisant GORM.
type GormQueryRepository struct {
	db *gorm.DB
}

// NewQueryRepository crée et retourne une nouvelle instance de GormQueryRepository.
func NewQueryRepository(db *gorm.DB) *GormQueryRepository {
	return &GormQueryRepository{db: db}
}

// RawQuery executes sql and returns the column names and every row in result order.
// Errors are returned unwrapped so that the driver message reaches the caller verbatim.
func (r *GormQueryRepository) RawQuery(ctx context.Context, sql string) ([]string, [][]any, error) {
	rows, err := r.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			// TEXT columns can come back as raw bytes depending on the declared type
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, result, nil
}
