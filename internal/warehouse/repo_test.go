package warehouse

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/pkg/db/models"
)

const (
	testBookA = "64c13ab08edf48a008793cac"
	testBookB = "64c13ab08edf48a008793cad"
)

func TestIncrementQuantityAccumulates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-1", 3); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-1", 4); err != nil {
		t.Fatalf("second increment: %v", err)
	}

	record, err := repo.FindRecord(ctx, testBookA, "shelf-1")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if record.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", record.Quantity)
	}
}

func TestIncrementQuantityKeepsShelvesIndependent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-1", 2); err != nil {
		t.Fatalf("increment shelf-1: %v", err)
	}
	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-2", 5); err != nil {
		t.Fatalf("increment shelf-2: %v", err)
	}

	records, err := repo.FindByBook(ctx, testBookA)
	if err != nil {
		t.Fatalf("find by book: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 shelves, got %d", len(records))
	}
	if records[0].Quantity != 2 || records[1].Quantity != 5 {
		t.Fatalf("unexpected quantities %d/%d", records[0].Quantity, records[1].Quantity)
	}
}

func TestDecrementQuantityGuards(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-1", 5); err != nil {
		t.Fatalf("seed: %v", err)
	}

	applied, err := repo.DecrementQuantity(ctx, testBookA, "shelf-1", 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !applied {
		t.Fatalf("expected decrement to apply")
	}

	applied, err = repo.DecrementQuantity(ctx, testBookA, "shelf-1", 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if applied {
		t.Fatalf("expected over-draw to be refused")
	}

	record, err := repo.FindRecord(ctx, testBookA, "shelf-1")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if record.Quantity != 2 {
		t.Fatalf("expected quantity 2 after refused draw, got %d", record.Quantity)
	}

	applied, err = repo.DecrementQuantity(ctx, testBookB, "shelf-9", 1)
	if err != nil {
		t.Fatalf("decrement missing record: %v", err)
	}
	if applied {
		t.Fatalf("missing record should behave like zero stock")
	}
}

func TestFindByBookHidesDrainedShelves(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	if err := repo.IncrementQuantity(ctx, testBookA, "shelf-1", 1); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.DecrementQuantity(ctx, testBookA, "shelf-1", 1); err != nil {
		t.Fatalf("drain: %v", err)
	}

	records, err := repo.FindByBook(ctx, testBookA)
	if err != nil {
		t.Fatalf("find by book: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("drained shelf should not be listed, got %d rows", len(records))
	}

	// The zero row itself is still there for future restocks.
	record, err := repo.FindRecord(ctx, testBookA, "shelf-1")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if record.Quantity != 0 {
		t.Fatalf("expected zero quantity, got %d", record.Quantity)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:warehouse_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.StockRecord{}); err != nil {
		t.Fatalf("migrate stock records: %v", err)
	}
	return db
}
