package warehouse

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
)

// Repository defines persistence operations for the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	IncrementQuantity(ctx context.Context, bookID, shelfID string, count int) error
	DecrementQuantity(ctx context.Context, bookID, shelfID string, count int) (bool, error)
	FindRecord(ctx context.Context, bookID, shelfID string) (*models.StockRecord, error)
	FindByBook(ctx context.Context, bookID string) ([]models.StockRecord, error)
}
