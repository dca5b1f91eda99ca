package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/bookstore-backend/api/responses"
	"github.com/shelfwise/bookstore-backend/api/validators"
	"github.com/shelfwise/bookstore-backend/internal/warehouse"
	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
)

// Restock handles inbound shipments: PUT /warehouse/{bookId}/{shelfId}/{count}.
func Restock(svc warehouse.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		bookID, err := validators.BookID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shelfID, err := validators.ShelfID(chi.URLParam(r, "shelfId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := validators.Count(chi.URLParam(r, "count"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Restock(r.Context(), bookID, shelfID, count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// FindShelves lists a book's stocked shelves: GET /warehouse/{bookId}.
func FindShelves(svc warehouse.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		bookID, err := validators.BookID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shelves, err := svc.FindShelves(r.Context(), bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shelves)
	}
}
