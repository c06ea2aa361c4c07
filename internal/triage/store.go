package triage

import "context"

// Store is the persistence interface for triage runs.
type Store interface {
	Get(ctx context.Context, id string) (*Run, bool, error)
	GetByDelivery(ctx context.Context, deliveryID string) (*Run, bool, error)
	Put(ctx context.Context, run *Run) error
}
