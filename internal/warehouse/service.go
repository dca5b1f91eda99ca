package warehouse

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/internal/catalog"
	"github.com/shelfwise/bookstore-backend/pkg/enums"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
	"github.com/shelfwise/bookstore-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockMetrics interface {
	IncStockOp(operation string)
}

// ShelfQuantity is one (shelf, quantity) pair in a book's stock view.
type ShelfQuantity struct {
	ShelfID  string `json:"shelf"`
	Quantity int    `json:"quantity"`
}

// Service exposes the stock ledger operations.
type Service interface {
	Restock(ctx context.Context, bookID, shelfID string, count int) (*ShelfQuantity, error)
	Consume(ctx context.Context, bookID, shelfID string, count int) error
	ConsumeInTx(ctx context.Context, tx *gorm.DB, bookID, shelfID string, count int) error
	FindShelves(ctx context.Context, bookID string) ([]ShelfQuantity, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics stockMetrics
	catalog catalog.Lookup
	logg    *logger.Logger
}

// NewService builds the stock ledger service. The catalog lookup and
// metrics are optional.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, metrics stockMetrics, cat catalog.Lookup, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		metrics: metrics,
		catalog: cat,
		logg:    logg,
	}, nil
}

// Restock adds count copies of a book to a shelf, creating the record on
// first sight of the pair. Returns the resulting quantity.
func (s *service) Restock(ctx context.Context, bookID, shelfID string, count int) (*ShelfQuantity, error) {
	if err := validateKeys(bookID, shelfID); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}

	var result ShelfQuantity
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.IncrementQuantity(ctx, bookID, shelfID, count); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
		}
		record, err := repo.FindRecord(ctx, bookID, shelfID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
		}
		result = ShelfQuantity{ShelfID: record.ShelfID, Quantity: record.Quantity}

		if s.outbox == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventStockRestocked,
			AggregateType: enums.AggregateStockRecord,
			AggregateID:   bookID + ":" + shelfID,
			Version:       1,
			Data: payloads.StockRestockedEvent{
				BookID:   bookID,
				ShelfID:  shelfID,
				Count:    count,
				Quantity: record.Quantity,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncStockOp("restock")
	}
	if s.logg != nil {
		logCtx := s.logg.WithShelfID(s.logg.WithBookID(ctx, bookID), shelfID)
		s.logg.Info(logCtx, "stock restocked")
	}
	return &result, nil
}

// Consume removes count copies from a shelf in its own transaction.
func (s *service) Consume(ctx context.Context, bookID, shelfID string, count int) error {
	if err := validateKeys(bookID, shelfID); err != nil {
		return err
	}
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ConsumeInTx(ctx, tx, bookID, shelfID, count)
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncStockOp("consume")
	}
	return nil
}

// ConsumeInTx removes count copies inside the caller's transaction. The
// fulfillment coordinator uses this to make multi-line applies atomic.
func (s *service) ConsumeInTx(ctx context.Context, tx *gorm.DB, bookID, shelfID string, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock consume")
	}
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	applied, err := s.repo.WithTx(tx).DecrementQuantity(ctx, bookID, shelfID, count)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough copies on shelf").
			WithDetails(map[string]any{"book": bookID, "shelf": shelfID, "requested": count})
	}
	return nil
}

// FindShelves lists the shelves holding at least one copy of the book.
// A known book with no stock yields an empty list; an unknown book is
// NotFound when a catalog is wired.
func (s *service) FindShelves(ctx context.Context, bookID string) ([]ShelfQuantity, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if s.catalog != nil {
		known, err := s.catalog.Exists(ctx, bookID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check catalog")
		}
		if !known {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
	}
	records, err := s.repo.FindByBook(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shelves")
	}
	shelves := make([]ShelfQuantity, 0, len(records))
	for _, record := range records {
		shelves = append(shelves, ShelfQuantity{ShelfID: record.ShelfID, Quantity: record.Quantity})
	}
	return shelves, nil
}

func validateKeys(bookID, shelfID string) error {
	if strings.TrimSpace(bookID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if strings.TrimSpace(shelfID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shelf id required")
	}
	return nil
}
