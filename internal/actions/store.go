package actions

import (
	"context"
	"time"
)

// Store persists corrective actions on the primary pool.
type Store interface {
	Create(ctx context.Context, a *Action) error
	List(ctx context.Context) ([]Action, error)
	FindByID(ctx context.Context, id int64) (*Action, error)
	// UpdateStatus writes the new status, compare-and-swapping on the
	// expected current status so concurrent transitions cannot both win.
	UpdateStatus(ctx context.Context, id int64, from, to Status, closedAt *time.Time) error
	// DueWithin returns open or in-progress actions whose due date falls
	// inside [now, now+window]. Used by the reminder scheduler.
	DueWithin(ctx context.Context, now time.Time, window time.Duration) ([]Action, error)
}
