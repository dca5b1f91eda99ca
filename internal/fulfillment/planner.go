package fulfillment

import (
	"context"
	"sort"

	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
)

// Planner proposes an allocation covering the given demand. Callers are
// free to build allocations by hand; the coordinator never requires a
// planner-produced one.
type Planner interface {
	Plan(ctx context.Context, demand map[string]int) ([]AllocationLine, error)
}

type greedyPlanner struct {
	ledger StockLedger
}

// NewGreedyPlanner drains the fullest shelves first, which keeps the
// line count low and tends to empty fragmented shelves last.
func NewGreedyPlanner(ledger StockLedger) Planner {
	return &greedyPlanner{ledger: ledger}
}

func (p *greedyPlanner) Plan(ctx context.Context, demand map[string]int) ([]AllocationLine, error) {
	books := make([]string, 0, len(demand))
	for bookID := range demand {
		books = append(books, bookID)
	}
	sort.Strings(books)

	var lines []AllocationLine
	for _, bookID := range books {
		needed := demand[bookID]
		if needed <= 0 {
			continue
		}
		shelves, err := p.ledger.FindShelves(ctx, bookID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(shelves, func(i, j int) bool {
			return shelves[i].Quantity > shelves[j].Quantity
		})
		for _, shelf := range shelves {
			if needed == 0 {
				break
			}
			take := shelf.Quantity
			if take > needed {
				take = needed
			}
			if take <= 0 {
				continue
			}
			lines = append(lines, AllocationLine{BookID: bookID, ShelfID: shelf.ShelfID, Count: take})
			needed -= take
		}
		if needed > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough copies across shelves").
				WithDetails(map[string]any{"book": bookID, "missing": needed})
		}
	}
	return lines, nil
}
