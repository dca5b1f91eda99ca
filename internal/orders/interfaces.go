package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and their
// requested book sequences.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	MarkFulfilled(ctx context.Context, id uuid.UUID) (bool, error)
}
