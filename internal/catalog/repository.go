package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
)

// Lookup is the read surface the warehouse consumes. The catalog CRUD
// itself lives in another service; this side only answers identity
// questions.
type Lookup interface {
	Exists(ctx context.Context, bookID string) (bool, error)
	FindByID(ctx context.Context, bookID string) (*models.Book, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog lookup bound to the provided DB.
func NewRepository(db *gorm.DB) Lookup {
	return &repository{db: db}
}

func (r *repository) Exists(ctx context.Context, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindByID(ctx context.Context, bookID string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", bookID).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}
