package models

import "time"

// StockRecord tracks how many copies of a book sit on one shelf.
// The (book_id, shelf_id) pair is the record identity; quantity never
// drops below zero. Records are kept when they reach zero — readers
// filter on quantity > 0, so a zero row and a missing row look the same.
type StockRecord struct {
	BookID    string    `gorm:"column:book_id;type:char(24);primaryKey"`
	ShelfID   string    `gorm:"column:shelf_id;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table aligned with the migrations.
func (StockRecord) TableName() string {
	return "stock_records"
}
