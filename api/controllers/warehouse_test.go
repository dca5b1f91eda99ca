package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/shelfwise/bookstore-backend/internal/warehouse"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/types"
)

const testBookID = "64c13ab08edf48a008793cac"

type stubWarehouseService struct {
	restock     func(ctx context.Context, bookID, shelfID string, count int) (*warehouse.ShelfQuantity, error)
	findShelves func(ctx context.Context, bookID string) ([]warehouse.ShelfQuantity, error)
}

func (s *stubWarehouseService) Restock(ctx context.Context, bookID, shelfID string, count int) (*warehouse.ShelfQuantity, error) {
	return s.restock(ctx, bookID, shelfID, count)
}

func (s *stubWarehouseService) Consume(ctx context.Context, bookID, shelfID string, count int) error {
	panic("not implemented")
}

func (s *stubWarehouseService) ConsumeInTx(ctx context.Context, tx *gorm.DB, bookID, shelfID string, count int) error {
	panic("not implemented")
}

func (s *stubWarehouseService) FindShelves(ctx context.Context, bookID string) ([]warehouse.ShelfQuantity, error) {
	return s.findShelves(ctx, bookID)
}

func newRequestWithParams(method, target string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rc := chi.NewRouteContext()
	for key, value := range params {
		rc.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRestockHandler(t *testing.T) {
	svc := &stubWarehouseService{
		restock: func(ctx context.Context, bookID, shelfID string, count int) (*warehouse.ShelfQuantity, error) {
			if bookID != testBookID || shelfID != "shelf-1" || count != 3 {
				t.Fatalf("unexpected args %s %s %d", bookID, shelfID, count)
			}
			return &warehouse.ShelfQuantity{ShelfID: shelfID, Quantity: 7}, nil
		},
	}

	req := newRequestWithParams(http.MethodPut, "/api/v1/warehouse/"+testBookID+"/shelf-1/3", map[string]string{
		"bookId":  testBookID,
		"shelfId": "shelf-1",
		"count":   "3",
	})
	resp := httptest.NewRecorder()
	Restock(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["quantity"].(float64) != 7 {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestRestockHandlerRejectsBadParams(t *testing.T) {
	svc := &stubWarehouseService{
		restock: func(ctx context.Context, bookID, shelfID string, count int) (*warehouse.ShelfQuantity, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	cases := map[string]map[string]string{
		"bad book id": {"bookId": "nope", "shelfId": "shelf-1", "count": "3"},
		"bad count":   {"bookId": testBookID, "shelfId": "shelf-1", "count": "zero"},
		"zero count":  {"bookId": testBookID, "shelfId": "shelf-1", "count": "0"},
	}
	for name, params := range cases {
		req := newRequestWithParams(http.MethodPut, "/api/v1/warehouse/x/y/z", params)
		resp := httptest.NewRecorder()
		Restock(svc, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.Code)
		}
	}
}

func TestFindShelvesHandler(t *testing.T) {
	svc := &stubWarehouseService{
		findShelves: func(ctx context.Context, bookID string) ([]warehouse.ShelfQuantity, error) {
			return []warehouse.ShelfQuantity{{ShelfID: "shelf-1", Quantity: 2}}, nil
		},
	}

	req := newRequestWithParams(http.MethodGet, "/api/v1/warehouse/"+testBookID, map[string]string{"bookId": testBookID})
	resp := httptest.NewRecorder()
	FindShelves(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestFindShelvesHandlerNotFound(t *testing.T) {
	svc := &stubWarehouseService{
		findShelves: func(ctx context.Context, bookID string) ([]warehouse.ShelfQuantity, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		},
	}

	req := newRequestWithParams(http.MethodGet, "/api/v1/warehouse/"+testBookID, map[string]string{"bookId": testBookID})
	resp := httptest.NewRecorder()
	FindShelves(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
