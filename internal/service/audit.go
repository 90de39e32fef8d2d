package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/inventory-api/internal/domain"
)

// ChangeRecorder appends change log rows. Implementations bound to a
// transaction make the row part of that transaction.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, entry domain.ChangeLog) (domain.ChangeLog, error)
}

// recordChange writes one audit row for a quantity change made by actor.
// A zero delta is refused before anything is written.
func recordChange(ctx context.Context, recorder ChangeRecorder, item domain.InventoryItem, actor domain.User, delta int) (domain.ChangeLog, error) {
	entry, err := domain.NewChangeLog(item.ID, actor.ID, delta)
	if err != nil {
		return domain.ChangeLog{}, err
	}
	entry.Username = actor.Username

	recorded, err := recorder.RecordChange(ctx, entry)
	if err != nil {
		return domain.ChangeLog{}, fmt.Errorf("recorder.RecordChange -> %w", err)
	}

	return recorded, nil
}
