package memstore

import (
	"context"
	"testing"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

func TestPutGet(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	run := &triage.Run{ID: "t-1", DeliveryID: "d-1", Status: triage.StatusPending}
	if err := s.Put(ctx, run); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "t-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected run to be found")
	}
	if got.ID != "t-1" || got.Status != triage.StatusPending {
		t.Errorf("got %+v", got)
	}

	// mutating the returned copy must not touch the stored run
	got.Status = triage.StatusFailed
	again, _, _ := s.Get(ctx, "t-1")
	if again.Status != triage.StatusPending {
		t.Errorf("stored run mutated through returned copy: %q", again.Status)
	}

	// mutating the caller's run after Put must not touch the stored run
	run.Status = triage.StatusComplete
	again, _, _ = s.Get(ctx, "t-1")
	if again.Status != triage.StatusPending {
		t.Errorf("stored run shares memory with caller: %q", again.Status)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	s := New()
	if _, ok, err := s.Get(context.Background(), "nope"); ok || err != nil {
		t.Errorf("Get missing = (%v, %v), want (false, nil)", ok, err)
	}
	if _, ok, err := s.GetByDelivery(context.Background(), "nope"); ok || err != nil {
		t.Errorf("GetByDelivery missing = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestGetByDelivery(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, &triage.Run{ID: "t-1", DeliveryID: "d-1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.GetByDelivery(ctx, "d-1")
	if err != nil {
		t.Fatalf("GetByDelivery: %v", err)
	}
	if !ok || got.ID != "t-1" {
		t.Errorf("got (%+v, %v), want run t-1", got, ok)
	}
}

func TestEmptyDeliveryNotIndexed(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, &triage.Run{ID: "t-1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := s.GetByDelivery(ctx, ""); ok {
		t.Error("empty delivery ID must not be indexed")
	}
}

func TestPutOverwrites(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, &triage.Run{ID: "t-1", DeliveryID: "d-1", Status: triage.StatusPending}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, &triage.Run{ID: "t-1", DeliveryID: "d-1", Status: triage.StatusComplete}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, _, _ := s.Get(ctx, "t-1")
	if got.Status != triage.StatusComplete {
		t.Errorf("status = %q, want overwrite to complete", got.Status)
	}
	byDelivery, _, _ := s.GetByDelivery(ctx, "d-1")
	if byDelivery.Status != triage.StatusComplete {
		t.Errorf("delivery lookup status = %q, want complete", byDelivery.Status)
	}
}
