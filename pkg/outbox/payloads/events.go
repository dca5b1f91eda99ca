package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent signals a new pending order with its requested titles.
type OrderCreatedEvent struct {
	OrderID uuid.UUID      `json:"order_id"`
	Books   map[string]int `json:"books"`
}

// OrderFulfilledEvent is emitted once every line of an order has shipped
// and stock has been consumed.
type OrderFulfilledEvent struct {
	OrderID     uuid.UUID      `json:"order_id"`
	Books       map[string]int `json:"books"`
	FulfilledAt time.Time      `json:"fulfilled_at"`
}

// StockRestockedEvent reports an inbound shipment placed on a shelf.
type StockRestockedEvent struct {
	BookID   string `json:"book_id"`
	ShelfID  string `json:"shelf_id"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}
