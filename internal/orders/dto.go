package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
	"github.com/shelfwise/bookstore-backend/pkg/enums"
)

// OrderDetail exposes one order with its requested sequence intact.
type OrderDetail struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Books     []string          `json:"books"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderSummary is the list-view shape: demand collapsed to a count per
// book, duplicates folded in.
type OrderSummary struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Books     map[string]int    `json:"books"`
	CreatedAt time.Time         `json:"created_at"`
}

// CollapseDemand folds a requested sequence into per-book counts.
// ["b1","b1","b2"] becomes {b1: 2, b2: 1}.
func CollapseDemand(bookIDs []string) map[string]int {
	demand := make(map[string]int, len(bookIDs))
	for _, id := range bookIDs {
		demand[id]++
	}
	return demand
}

func bookSequence(order *models.Order) []string {
	books := make([]string, 0, len(order.Books))
	for _, row := range order.Books {
		books = append(books, row.BookID)
	}
	return books
}

func toDetail(order *models.Order) *OrderDetail {
	return &OrderDetail{
		ID:        order.ID,
		Status:    order.Status,
		Books:     bookSequence(order),
		CreatedAt: order.CreatedAt,
	}
}

func toSummary(order *models.Order) OrderSummary {
	return OrderSummary{
		ID:        order.ID,
		Status:    order.Status,
		Books:     CollapseDemand(bookSequence(order)),
		CreatedAt: order.CreatedAt,
	}
}
