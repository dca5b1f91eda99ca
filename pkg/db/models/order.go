package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/bookstore-backend/pkg/enums"
)

// Order is a placed request for a multiset of books. The requested books
// live in order_books as a flat sequence; duplicates are meaningful, each
// row is one demanded unit. Only the fulfillment coordinator mutates the
// status after creation.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Status    enums.OrderStatus `gorm:"column:status;not null;default:pending"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Books []OrderBook `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName keeps the table aligned with the migrations.
func (Order) TableName() string {
	return "orders"
}

// OrderBook is one demanded unit of a book within an order. Position
// preserves the sequence the client sent.
type OrderBook struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	BookID   string    `gorm:"column:book_id;type:char(24);not null"`
	Position int       `gorm:"column:position;not null"`
}

// TableName keeps the table aligned with the migrations.
func (OrderBook) TableName() string {
	return "order_books"
}
