package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
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

// Service exposes order placement and reads. Status mutation happens
// through MarkFulfilledInTx, reserved for the fulfillment coordinator.
type Service interface {
	Create(ctx context.Context, bookIDs []string) (*OrderDetail, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	List(ctx context.Context) ([]OrderSummary, error)
	MarkFulfilledInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the order store service.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, logg: logg}, nil
}

// Create stores a new pending order. The request sequence is kept as-is;
// duplicates mean demand for multiple copies. No stock check happens at
// placement time.
func (s *service) Create(ctx context.Context, bookIDs []string) (*OrderDetail, error) {
	if len(bookIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must request at least one book")
	}
	for _, id := range bookIDs {
		if strings.TrimSpace(id) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
		}
	}

	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusPending,
	}
	order.Books = make([]models.OrderBook, 0, len(bookIDs))
	for i, id := range bookIDs {
		order.Books = append(order.Books, models.OrderBook{
			ID:       uuid.New(),
			OrderID:  order.ID,
			BookID:   id,
			Position: i,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if s.outbox == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID.String(),
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID: order.ID,
				Books:   CollapseDemand(bookIDs),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order placed")
	}
	return toDetail(order), nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toDetail(order), nil
}

func (s *service) List(ctx context.Context) ([]OrderSummary, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	summaries := make([]OrderSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, toSummary(&rows[i]))
	}
	return summaries, nil
}

// MarkFulfilledInTx flips a pending order to fulfilled inside the
// caller's transaction. A fulfilled order stays fulfilled.
func (s *service) MarkFulfilledInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to fulfill order")
	}
	repo := s.repo.WithTx(tx)
	applied, err := repo.MarkFulfilled(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order fulfilled")
	}
	if applied {
		return nil
	}
	// Distinguish a missing order from one already fulfilled.
	if _, err := repo.FindByID(ctx, orderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order already fulfilled")
}
