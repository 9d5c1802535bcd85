package usecase

import (
	"context"

	"github.com/google/uuid"
)

// SyncSummary reports the outcome of one reconciliation pass for one user.
type SyncSummary struct {
	Synced  int // Board records examined.
	Updated int // Local records whose status advanced.
	Skipped int // Records left untouched: unmapped states, conflicts, malformed or unknown entries.
}

// SyncUsecase reconciles local application statuses against the external
// board. A pass is idempotent: running it twice against the same board data
// yields the same local state.
type SyncUsecase interface {
	// Reconcile fetches the user's board applications and advances matching
	// local records. One bad record never aborts the rest of the batch.
	Reconcile(ctx context.Context, userID uuid.UUID) (*SyncSummary, error)

	// ReconcileAll runs Reconcile for every connected user, isolating
	// per-user failures. Invoked by the scheduled worker.
	ReconcileAll(ctx context.Context) error
}
