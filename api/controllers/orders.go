package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/bookstore-backend/api/responses"
	"github.com/shelfwise/bookstore-backend/api/validators"
	"github.com/shelfwise/bookstore-backend/internal/fulfillment"
	"github.com/shelfwise/bookstore-backend/internal/orders"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
)

type placeOrderRequest struct {
	Books []string `json:"books" validate:"required,min=1,dive,len=24,hexadecimal"`
}

type fulfilOrderRequest struct {
	Lines []fulfilLine `json:"lines" validate:"required,min=1,dive"`
}

type fulfilLine struct {
	Book          string `json:"book" validate:"required,len=24,hexadecimal"`
	Shelf         string `json:"shelf" validate:"required,max=64"`
	NumberOfBooks int    `json:"numberOfBooks" validate:"required,min=1"`
}

// PlaceOrder handles POST /orders.
func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Create(r.Context(), payload.Books)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// ListOrders handles GET /orders.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		summaries, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}

// GetOrder handles GET /orders/{orderId}.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.OrderID(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// FulfilOrder handles PUT /orders/{orderId}/fulfil.
func FulfilOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := validators.OrderID(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload fulfilOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]fulfillment.AllocationLine, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			lines = append(lines, fulfillment.AllocationLine{
				BookID:  line.Book,
				ShelfID: line.Shelf,
				Count:   line.NumberOfBooks,
			})
		}

		if err := svc.Fulfill(r.Context(), orderID, lines); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "fulfilled"})
	}
}

// PlanAllocation handles POST /orders/{orderId}/allocation. It previews
// an allocation without reserving stock.
func PlanAllocation(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := validators.OrderID(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.PlanAllocation(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}
