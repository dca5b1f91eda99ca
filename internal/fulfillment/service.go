package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/internal/orders"
	"github.com/shelfwise/bookstore-backend/internal/warehouse"
	"github.com/shelfwise/bookstore-backend/pkg/enums"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
	"github.com/shelfwise/bookstore-backend/pkg/outbox/payloads"
)

// AllocationLine says: take count copies of a book from one shelf.
type AllocationLine struct {
	BookID  string `json:"book"`
	ShelfID string `json:"shelf"`
	Count   int    `json:"numberOfBooks"`
}

// MismatchDetail reports one book whose supplied total differs from the
// order's demand.
type MismatchDetail struct {
	BookID   string `json:"book"`
	Expected int    `json:"expected"`
	Supplied int    `json:"supplied"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type fulfillMetrics interface {
	ObserveFulfillment(outcome string, duration time.Duration)
}

// OrderStore is the slice of the order service the coordinator needs.
type OrderStore interface {
	Get(ctx context.Context, orderID uuid.UUID) (*orders.OrderDetail, error)
	MarkFulfilledInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// StockLedger is the slice of the warehouse the coordinator needs.
type StockLedger interface {
	ConsumeInTx(ctx context.Context, tx *gorm.DB, bookID, shelfID string, count int) error
	FindShelves(ctx context.Context, bookID string) ([]warehouse.ShelfQuantity, error)
}

// Service coordinates exact reconciliation and all-or-nothing stock
// application for an order.
type Service interface {
	Fulfill(ctx context.Context, orderID uuid.UUID, lines []AllocationLine) error
	PlanAllocation(ctx context.Context, orderID uuid.UUID) ([]AllocationLine, error)
}

type service struct {
	orders  OrderStore
	ledger  StockLedger
	tx      txRunner
	outbox  outboxPublisher
	metrics fulfillMetrics
	planner Planner
	logg    *logger.Logger
}

// NewService builds the fulfillment coordinator. The planner defaults to
// the greedy largest-first strategy when nil.
func NewService(orderStore OrderStore, ledger StockLedger, tx txRunner, ob outboxPublisher, metrics fulfillMetrics, planner Planner, logg *logger.Logger) (Service, error) {
	if orderStore == nil {
		return nil, fmt.Errorf("order store required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if planner == nil {
		planner = NewGreedyPlanner(ledger)
	}
	return &service{
		orders:  orderStore,
		ledger:  ledger,
		tx:      tx,
		outbox:  ob,
		metrics: metrics,
		planner: planner,
		logg:    logg,
	}, nil
}

// Fulfill applies the supplied allocation to the warehouse and marks the
// order fulfilled, all inside one transaction. The allocation must cover
// the order's demand exactly: every demanded copy assigned to a shelf,
// no extra copies, no unknown books.
func (s *service) Fulfill(ctx context.Context, orderID uuid.UUID, lines []AllocationLine) error {
	started := time.Now()
	err := s.fulfill(ctx, orderID, lines)
	if s.metrics != nil {
		s.metrics.ObserveFulfillment(outcomeFor(err), time.Since(started))
	}
	return err
}

func (s *service) fulfill(ctx context.Context, orderID uuid.UUID, lines []AllocationLine) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "allocation lines required")
	}
	for _, line := range lines {
		if line.BookID == "" || line.ShelfID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "allocation line missing book or shelf")
		}
		if line.Count <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
		}
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already fulfilled")
	}

	demand := orders.CollapseDemand(order.Books)
	supply := make(map[string]int, len(lines))
	for _, line := range lines {
		supply[line.BookID] += line.Count
	}
	if mismatches := reconcile(demand, supply); len(mismatches) > 0 {
		return pkgerrors.New(pkgerrors.CodeQuantityMismatch, "allocation does not match order demand").
			WithDetails(map[string]any{"books": mismatches})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range lines {
			if err := s.ledger.ConsumeInTx(ctx, tx, line.BookID, line.ShelfID, line.Count); err != nil {
				return err
			}
		}
		if err := s.orders.MarkFulfilledInTx(ctx, tx, orderID); err != nil {
			return err
		}
		if s.outbox == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderFulfilled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID.String(),
			Version:       1,
			Data: payloads.OrderFulfilledEvent{
				OrderID:     orderID,
				Books:       demand,
				FulfilledAt: time.Now().UTC(),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order fulfilled")
	}
	return nil
}

// PlanAllocation previews an allocation for a pending order using the
// configured planner. It reads current stock and does not reserve it; a
// returned plan can still lose a race at fulfill time.
func (s *service) PlanAllocation(ctx context.Context, orderID uuid.UUID) ([]AllocationLine, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already fulfilled")
	}
	return s.planner.Plan(ctx, orders.CollapseDemand(order.Books))
}

// reconcile returns one detail row per book whose supplied total differs
// from demand, including books supplied but never ordered. Details are
// sorted for stable output.
func reconcile(demand, supply map[string]int) []MismatchDetail {
	var details []MismatchDetail
	for bookID, expected := range demand {
		if supplied := supply[bookID]; supplied != expected {
			details = append(details, MismatchDetail{BookID: bookID, Expected: expected, Supplied: supplied})
		}
	}
	for bookID, supplied := range supply {
		if _, ordered := demand[bookID]; !ordered {
			details = append(details, MismatchDetail{BookID: bookID, Expected: 0, Supplied: supplied})
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].BookID < details[j].BookID
	})
	return details
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "fulfilled"
	case pkgerrors.IsCode(err, pkgerrors.CodeQuantityMismatch):
		return "quantity_mismatch"
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		return "insufficient_stock"
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		return "state_conflict"
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return "not_found"
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return "validation"
	default:
		return "error"
	}
}
