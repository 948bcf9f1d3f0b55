package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

func TestTimelineBandStore(t *testing.T) {
	ctx := context.Background()
	store := NewTimelineBandStore()

	bands := []domain.YearlyMetricsBand{
		{Year: 2, TVPIP50: 1.1},
		{Year: 0, TVPIP50: 0.9},
		{Year: 1, TVPIP50: 1.0},
	}
	if err := store.InsertBulk(ctx, "run-1", bands); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	for i, b := range got {
		if b.Year != i {
			t.Errorf("band %d has year %d, want ordered by year", i, b.Year)
		}
	}

	if bands[0].Year != 2 {
		t.Errorf("input slice was reordered")
	}

	// Stored slice is independent of the caller's
	bands[0].TVPIP50 = 99
	got[0].TVPIP50 = 99
	again, _ := store.GetByRunID(ctx, "run-1")
	if again[0].TVPIP50 != 0.9 || again[2].TVPIP50 != 1.1 {
		t.Errorf("store was mutated through a caller slice: %+v", again)
	}

	if err := store.InsertBulk(ctx, "run-1", bands); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if err := store.InsertBulk(ctx, "", bands); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetByRunID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
