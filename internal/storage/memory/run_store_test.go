package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

func makeRun(id string, ts time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:          id,
		Timestamp:   ts,
		Fingerprint: "fp-" + id,
		Parameters:  domain.DefaultPortfolioParameters(),
		Summary:     domain.SummaryStatistics{NumSimulations: 10, MedianMOIC: 2.1},
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	run := makeRun("run-1", time.Unix(1000, 0))
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Summary.MedianMOIC != 2.1 {
		t.Errorf("expected median 2.1, got %v", got.Summary.MedianMOIC)
	}

	// Mutating the returned copy does not affect the store
	got.Fingerprint = "changed"
	again, _ := store.GetByID(ctx, "run-1")
	if again.Fingerprint != "fp-run-1" {
		t.Errorf("store was mutated through returned record")
	}
}

func TestRunStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.RunRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}

	run := makeRun("dup", time.Unix(1, 0))
	_ = store.Insert(ctx, run)
	if err := store.Insert(ctx, run); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	base := time.Unix(10_000, 0)
	_ = store.Insert(ctx, makeRun("a", base))
	_ = store.Insert(ctx, makeRun("b", base.Add(2*time.Minute)))
	_ = store.Insert(ctx, makeRun("c", base.Add(time.Minute)))
	_ = store.Insert(ctx, makeRun("d", base.Add(2*time.Minute)))

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"b", "d", "c", "a"}
	if len(all) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	limited, _ := store.List(ctx, 2)
	if len(limited) != 2 || limited[0].ID != "b" {
		t.Errorf("unexpected limited list: %v", limited)
	}
}

func TestRunStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	_ = store.Insert(ctx, makeRun("gone", time.Unix(5, 0)))
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
