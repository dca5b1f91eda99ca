package validators

import (
	"testing"

	pkgerrors "github.com/shelfwise/bookstore-backend/pkg/errors"
)

func TestBookID(t *testing.T) {
	t.Parallel()

	if _, err := BookID("64c13ab08edf48a008793cac"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	if got, err := BookID("  64c13ab08edf48a008793cac "); err != nil || got != "64c13ab08edf48a008793cac" {
		t.Fatalf("expected trimmed id, got %q err %v", got, err)
	}

	for _, raw := range []string{"", "short", "64c13ab08edf48a008793ca", "64c13ab08edf48a008793cazz", "zzc13ab08edf48a008793cac"} {
		if _, err := BookID(raw); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}

func TestShelfID(t *testing.T) {
	t.Parallel()

	if _, err := ShelfID("shelf-1"); err != nil {
		t.Fatalf("valid shelf rejected: %v", err)
	}
	if _, err := ShelfID("  "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank shelf")
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	if got, err := Count("12"); err != nil || got != 12 {
		t.Fatalf("expected 12, got %d err %v", got, err)
	}
	for _, raw := range []string{"", "abc", "0", "-4"} {
		if _, err := Count(raw); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}

func TestOrderID(t *testing.T) {
	t.Parallel()

	if _, err := OrderID("not-a-uuid"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for malformed uuid")
	}
	if _, err := OrderID("7f9c24e5-2f31-4a4b-9d63-6c2f0a2f6b71"); err != nil {
		t.Fatalf("valid uuid rejected: %v", err)
	}
}
