package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

func TestGridAnalysisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewGridAnalysisStore()

	older := &domain.GridAnalysisRecord{ID: "g1", Timestamp: time.Unix(100, 0), Commentary: "first"}
	newer := &domain.GridAnalysisRecord{ID: "g2", Timestamp: time.Unix(200, 0), Commentary: "second"}

	for _, g := range []*domain.GridAnalysisRecord{older, newer} {
		if err := store.Insert(ctx, g); err != nil {
			t.Fatalf("Insert %s failed: %v", g.ID, err)
		}
	}
	if err := store.Insert(ctx, older); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	list, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "g2" || list[1].ID != "g1" {
		t.Errorf("expected [g2 g1], got %v", list)
	}

	got, err := store.GetByID(ctx, "g1")
	if err != nil || got.Commentary != "first" {
		t.Errorf("GetByID: got %v, %v", got, err)
	}

	if err := store.Delete(ctx, "g1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
