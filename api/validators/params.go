package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
)

const bookIDLength = 24

// BookID checks the 24-character hex identifier format the catalog uses.
func BookID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if len(id) != bookIDLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "book id must be 24 characters").
			WithDetails(map[string]any{"book": raw})
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return "", pkgerrors.New(pkgerrors.CodeValidation, "book id must be hexadecimal").
				WithDetails(map[string]any{"book": raw})
		}
	}
	return id, nil
}

// ShelfID checks the shelf path segment is present and sane.
func ShelfID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shelf id required")
	}
	if len(id) > 64 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shelf id too long")
	}
	return id, nil
}

// OrderID parses the order path segment as a UUID.
func OrderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid")
	}
	return id, nil
}

// Count parses a positive integer path segment.
func Count(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "count must be numeric")
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	return value, nil
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
