package warehouse

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// IncrementQuantity upserts the (book, shelf) record, adding count to the
// existing quantity when the row is already there.
func (r *repository) IncrementQuantity(ctx context.Context, bookID, shelfID string, count int) error {
	record := models.StockRecord{
		BookID:   bookID,
		ShelfID:  shelfID,
		Quantity: count,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "book_id"}, {Name: "shelf_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("stock_records.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&record).Error
}

// DecrementQuantity subtracts count when the shelf holds at least that
// many copies. The guard and the write are one statement, so quantity
// can never go negative regardless of interleaving. Returns false when
// the guard did not match.
func (r *repository) DecrementQuantity(ctx context.Context, bookID, shelfID string, count int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE book_id = ? AND shelf_id = ? AND quantity >= ?
	`, count, bookID, shelfID, count)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindRecord(ctx context.Context, bookID, shelfID string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND shelf_id = ?", bookID, shelfID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByBook(ctx context.Context, bookID string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND quantity > 0", bookID).
		Order("shelf_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
