package domain

import (
	"errors"
	"time"
)

var ErrZeroQuantityChange = errors.New("quantity change must not be zero")

// ChangeLog is one append-only audit row: who changed an item's quantity,
// by how much and when.
type ChangeLog struct {
	ID             uint      `json:"-"`
	ItemID         uint      `json:"inventory_item"`
	UserID         uint      `json:"-"`
	Username       string    `json:"user"`
	QuantityChange int       `json:"quantity_change"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewChangeLog(itemID, userID uint, delta int) (ChangeLog, error) {
	if delta == 0 {
		return ChangeLog{}, ErrZeroQuantityChange
	}

	return ChangeLog{
		ItemID:         itemID,
		UserID:         userID,
		QuantityChange: delta,
	}, nil
}
