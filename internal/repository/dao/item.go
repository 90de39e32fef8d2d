package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrItemNotFound = errors.New("item not found")

type Item struct {
	ID uint `gorm:"primaryKey"`

	OwnerID uint `gorm:"not null;index"`
	Owner   User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`

	Name        string          `gorm:"size:100;not null"`
	Description *string         `gorm:"type:text"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Category    string          `gorm:"size:100;not null;index"`

	DateAdded   time.Time `gorm:"autoCreateTime;not null"`
	LastUpdated time.Time `gorm:"autoUpdateTime;not null"`
}

func (Item) TableName() string {
	return "inventory_items"
}

type ItemQuantity struct {
	ID       uint
	Name     string
	Quantity int
}

type ItemOrder struct {
	Column string
	Desc   bool
}

type ItemQuery struct {
	Category    *string
	Price       *decimal.Decimal
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	LowStock    *int
	SearchTerms []string
	OrderBy     []ItemOrder
}

// ownedBy is applied to every item query; rows of other owners are
// indistinguishable from missing rows.
func ownedBy(ownerID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("inventory_items.owner_id = ?", ownerID)
	}
}

type ItemDAO struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewItemDAO(db *gorm.DB, lockTimeout time.Duration) *ItemDAO {
	return &ItemDAO{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (d *ItemDAO) owned(ctx context.Context, ownerID uint) *gorm.DB {
	return d.db.WithContext(ctx).Model(&Item{}).Scopes(ownedBy(ownerID))
}

func (d *ItemDAO) Insert(ctx context.Context, item Item) (Item, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&item)
	if result.Error != nil {
		return Item{}, result.Error
	}

	return item, nil
}

func (d *ItemDAO) FindOwned(ctx context.Context, ownerID, id uint) (Item, error) {
	var item Item

	result := d.owned(ctx, ownerID).Where("inventory_items.id = ?", id).Take(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, result.Error
	}

	return item, nil
}

// FindOwnedForUpdate takes a row lock held until the surrounding
// transaction ends. Only meaningful on a DAO returned by Transaction.
func (d *ItemDAO) FindOwnedForUpdate(ctx context.Context, ownerID, id uint) (Item, error) {
	var item Item

	result := d.owned(ctx, ownerID).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("inventory_items.id = ?", id).
		Take(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, result.Error
	}

	return item, nil
}

func (d *ItemDAO) List(ctx context.Context, ownerID uint, q ItemQuery) ([]Item, error) {
	tx := d.owned(ctx, ownerID)

	if q.Category != nil {
		tx = tx.Where("category = ?", *q.Category)
	}
	if q.Price != nil {
		tx = tx.Where("price = ?", *q.Price)
	}
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}
	if q.LowStock != nil {
		tx = tx.Where("quantity < ?", *q.LowStock)
	}
	for _, term := range q.SearchTerms {
		pattern := "%" + escapeLike(term) + "%"
		tx = tx.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	for _, o := range q.OrderBy {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	tx = tx.Order("id")

	var items []Item
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (d *ItemDAO) ListQuantities(ctx context.Context, ownerID uint) ([]ItemQuantity, error) {
	var rows []ItemQuantity

	result := d.owned(ctx, ownerID).
		Select("id", "name", "quantity").
		Order("name").
		Order("id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// Update writes the editable columns and refreshes last_updated, then
// reads the row back so the caller sees exactly what was persisted.
// Owner and date_added are never written.
func (d *ItemDAO) Update(ctx context.Context, item Item) (Item, error) {
	item.LastUpdated = time.Now()

	result := d.owned(ctx, item.OwnerID).
		Where("inventory_items.id = ?", item.ID).
		Select("name", "description", "quantity", "price", "category", "last_updated").
		Updates(&item)
	if result.Error != nil {
		return Item{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Item{}, ErrItemNotFound
	}

	return d.FindOwned(ctx, item.OwnerID, item.ID)
}

// Delete removes an owned item. Its change logs are removed by the
// inventory_change_logs.inventory_item_id cascade.
func (d *ItemDAO) Delete(ctx context.Context, ownerID, id uint) error {
	result := d.db.WithContext(ctx).
		Scopes(ownedBy(ownerID)).
		Where("inventory_items.id = ?", id).
		Delete(&Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Transaction runs fn with DAOs bound to one database transaction. A
// non-nil error from fn rolls everything back. Lock waits are bounded by
// the configured lock timeout and surface as ErrConcurrentUpdate.
func (d *ItemDAO) Transaction(ctx context.Context, fn func(items *ItemDAO, logs *ChangeLogDAO) error) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if d.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		return fn(&ItemDAO{db: tx, lockTimeout: d.lockTimeout}, NewChangeLogDAO(tx))
	})
	if err != nil && isConflict(err) {
		return fmt.Errorf("%w: %v", ErrConcurrentUpdate, err)
	}

	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
