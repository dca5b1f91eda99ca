package warehouse

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/internal/catalog"
	"github.com/shelfwise/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
)

type stubStockRepo struct {
	mu    sync.Mutex
	stock map[string]int
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{stock: make(map[string]int)}
}

func stockKey(bookID, shelfID string) string {
	return bookID + "|" + shelfID
}

func (s *stubStockRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubStockRepo) IncrementQuantity(ctx context.Context, bookID, shelfID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey(bookID, shelfID)] += count
	return nil
}

func (s *stubStockRepo) DecrementQuantity(ctx context.Context, bookID, shelfID string, count int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stockKey(bookID, shelfID)
	if s.stock[key] < count {
		return false, nil
	}
	s.stock[key] -= count
	return true, nil
}

func (s *stubStockRepo) FindRecord(ctx context.Context, bookID, shelfID string) (*models.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.stock[stockKey(bookID, shelfID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.StockRecord{BookID: bookID, ShelfID: shelfID, Quantity: qty}, nil
}

func (s *stubStockRepo) FindByBook(ctx context.Context, bookID string) ([]models.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []models.StockRecord
	for key, qty := range s.stock {
		if qty <= 0 {
			continue
		}
		if len(key) > len(bookID) && key[:len(bookID)] == bookID && key[len(bookID)] == '|' {
			records = append(records, models.StockRecord{BookID: bookID, ShelfID: key[len(bookID)+1:], Quantity: qty})
		}
	}
	return records, nil
}

type passTxRunner struct{}

func (passTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

type stubCatalog struct {
	known map[string]bool
}

func (s *stubCatalog) Exists(ctx context.Context, bookID string) (bool, error) {
	return s.known[bookID], nil
}

func (s *stubCatalog) FindByID(ctx context.Context, bookID string) (*models.Book, error) {
	if !s.known[bookID] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Book{ID: bookID}, nil
}

type stubStockMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (s *stubStockMetrics) IncStockOp(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops == nil {
		s.ops = make(map[string]int)
	}
	s.ops[operation]++
}

func newTestService(t *testing.T, repo Repository, ob outboxPublisher, metrics stockMetrics, cat catalog.Lookup) Service {
	t.Helper()
	svc, err := NewService(repo, passTxRunner{}, ob, metrics, cat, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRestockRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubStockRepo(), nil, nil, nil)
	ctx := context.Background()

	for _, count := range []int{0, -3} {
		if _, err := svc.Restock(ctx, testBookA, "shelf-1", count); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("count %d: expected validation error, got %v", count, err)
		}
	}
	if _, err := svc.Restock(ctx, "", "shelf-1", 1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty book id")
	}
}

func TestRestockAccumulatesAndEmits(t *testing.T) {
	t.Parallel()

	repo := newStubStockRepo()
	ob := &stubOutbox{}
	metrics := &stubStockMetrics{}
	svc := newTestService(t, repo, ob, metrics, nil)
	ctx := context.Background()

	if _, err := svc.Restock(ctx, testBookA, "shelf-1", 3); err != nil {
		t.Fatalf("restock: %v", err)
	}
	result, err := svc.Restock(ctx, testBookA, "shelf-1", 4)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if result.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", result.Quantity)
	}
	if len(ob.events) != 2 {
		t.Fatalf("expected 2 outbox events, got %d", len(ob.events))
	}
	if metrics.ops["restock"] != 2 {
		t.Fatalf("expected restock metric 2, got %d", metrics.ops["restock"])
	}
}

func TestConsumeInsufficientStock(t *testing.T) {
	t.Parallel()

	repo := newStubStockRepo()
	svc := newTestService(t, repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Restock(ctx, testBookA, "shelf-1", 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := svc.Consume(ctx, testBookA, "shelf-1", 3)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if repo.stock[stockKey(testBookA, "shelf-1")] != 2 {
		t.Fatalf("refused consume must not change quantity")
	}

	if err := svc.Consume(ctx, testBookA, "shelf-1", 2); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if repo.stock[stockKey(testBookA, "shelf-1")] != 0 {
		t.Fatalf("expected shelf drained")
	}
}

func TestFindShelvesCatalogBehavior(t *testing.T) {
	t.Parallel()

	repo := newStubStockRepo()
	cat := &stubCatalog{known: map[string]bool{testBookA: true}}
	svc := newTestService(t, repo, nil, nil, cat)
	ctx := context.Background()

	// Known book with no stock is an empty list, not an error.
	shelves, err := svc.FindShelves(ctx, testBookA)
	if err != nil {
		t.Fatalf("find shelves: %v", err)
	}
	if len(shelves) != 0 {
		t.Fatalf("expected empty list, got %d", len(shelves))
	}

	if _, err := svc.FindShelves(ctx, testBookB); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown book, got %v", err)
	}

	if _, err := svc.Restock(ctx, testBookA, "shelf-2", 4); err != nil {
		t.Fatalf("restock: %v", err)
	}
	shelves, err = svc.FindShelves(ctx, testBookA)
	if err != nil {
		t.Fatalf("find shelves: %v", err)
	}
	if len(shelves) != 1 || shelves[0].ShelfID != "shelf-2" || shelves[0].Quantity != 4 {
		t.Fatalf("unexpected shelves %+v", shelves)
	}
}

func TestFindShelvesWithoutCatalog(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubStockRepo(), nil, nil, nil)

	shelves, err := svc.FindShelves(context.Background(), testBookB)
	if err != nil {
		t.Fatalf("find shelves: %v", err)
	}
	if len(shelves) != 0 {
		t.Fatalf("expected empty list without catalog, got %d", len(shelves))
	}
}

func TestConcurrentConsumeLastUnit(t *testing.T) {
	t.Parallel()

	repo := newStubStockRepo()
	svc := newTestService(t, repo, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Restock(ctx, testBookA, "shelf-1", 1); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Consume(ctx, testBookA, "shelf-1", 1)
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
		losses++
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got wins=%d losses=%d", wins, losses)
	}
	if repo.stock[stockKey(testBookA, "shelf-1")] != 0 {
		t.Fatalf("expected final quantity 0")
	}
}
