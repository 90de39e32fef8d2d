package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChangeLog struct {
	ID uint `gorm:"primaryKey"`

	ItemID uint `gorm:"column:inventory_item_id;not null;index"`
	Item   Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	QuantityChange int       `gorm:"not null;check:chk_change_logs_quantity_change,quantity_change <> 0"`
	Timestamp      time.Time `gorm:"autoCreateTime;not null"`
}

func (ChangeLog) TableName() string {
	return "inventory_change_logs"
}

// ChangeLogDAO only appends and reads; rows disappear solely through the
// item and user foreign key cascades.
type ChangeLogDAO struct {
	db *gorm.DB
}

func NewChangeLogDAO(db *gorm.DB) *ChangeLogDAO {
	return &ChangeLogDAO{
		db: db,
	}
}

func (d *ChangeLogDAO) Insert(ctx context.Context, entry ChangeLog) (ChangeLog, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&entry)
	if result.Error != nil {
		return ChangeLog{}, result.Error
	}

	return entry, nil
}

// FindByItem returns the history of one item, newest first, with the
// acting user loaded.
func (d *ChangeLogDAO) FindByItem(ctx context.Context, itemID uint) ([]ChangeLog, error) {
	var entries []ChangeLog

	result := d.db.WithContext(ctx).
		Preload("User").
		Where("inventory_item_id = ?", itemID).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (d *ChangeLogDAO) CountByItem(ctx context.Context, itemID uint) (int64, error) {
	var n int64

	result := d.db.WithContext(ctx).
		Model(&ChangeLog{}).
		Where("inventory_item_id = ?", itemID).
		Count(&n)

	return n, result.Error
}
