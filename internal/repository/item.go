package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/repository/dao"
)

var (
	ErrItemNotFound     = dao.ErrItemNotFound
	ErrConcurrentUpdate = dao.ErrConcurrentUpdate
)

type ItemDAO interface {
	Insert(ctx context.Context, item dao.Item) (dao.Item, error)
	FindOwned(ctx context.Context, ownerID, id uint) (dao.Item, error)
	List(ctx context.Context, ownerID uint, q dao.ItemQuery) ([]dao.Item, error)
	ListQuantities(ctx context.Context, ownerID uint) ([]dao.ItemQuantity, error)
	Delete(ctx context.Context, ownerID, id uint) error
	Transaction(ctx context.Context, fn func(items *dao.ItemDAO, logs *dao.ChangeLogDAO) error) error
}

type ChangeLogDAO interface {
	FindByItem(ctx context.Context, itemID uint) ([]dao.ChangeLog, error)
}

// ItemUnitOfWork is the view of the item tables inside one transaction.
// Rows read through FindOwnedForUpdate stay locked until it ends.
type ItemUnitOfWork interface {
	FindOwnedForUpdate(ctx context.Context, ownerID, id uint) (domain.InventoryItem, error)
	Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	RecordChange(ctx context.Context, entry domain.ChangeLog) (domain.ChangeLog, error)
}

type ItemRepository struct {
	dao    ItemDAO
	logDAO ChangeLogDAO
}

func NewItemRepository(dao ItemDAO, logDAO ChangeLogDAO) *ItemRepository {
	return &ItemRepository{
		dao:    dao,
		logDAO: logDAO,
	}
}

func (r *ItemRepository) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	created, err := r.dao.Insert(ctx, itemDomainToDao(item))
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return itemDaoToDomain(created), nil
}

func (r *ItemRepository) FindOwned(ctx context.Context, ownerID, id uint) (domain.InventoryItem, error) {
	found, err := r.dao.FindOwned(ctx, ownerID, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("r.dao.FindOwned -> %w", err)
	}

	return itemDaoToDomain(found), nil
}

func (r *ItemRepository) List(ctx context.Context, ownerID uint, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = domain.DefaultOrdering
	}
	orderBy := make([]dao.ItemOrder, 0, len(ordering))
	for _, o := range ordering {
		orderBy = append(orderBy, dao.ItemOrder{Column: o.Column, Desc: o.Desc})
	}

	found, err := r.dao.List(ctx, ownerID, dao.ItemQuery{
		Category:    filter.Category,
		Price:       filter.Price,
		MinPrice:    filter.MinPrice,
		MaxPrice:    filter.MaxPrice,
		LowStock:    filter.LowStock,
		SearchTerms: filter.SearchTerms(),
		OrderBy:     orderBy,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(found))
	for _, it := range found {
		items = append(items, itemDaoToDomain(it))
	}

	return items, nil
}

func (r *ItemRepository) ListQuantities(ctx context.Context, ownerID uint) ([]domain.ItemQuantity, error) {
	rows, err := r.dao.ListQuantities(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListQuantities -> %w", err)
	}

	out := make([]domain.ItemQuantity, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ItemQuantity{ID: row.ID, Name: row.Name, Quantity: row.Quantity})
	}

	return out, nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID, id uint) error {
	if err := r.dao.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// ListChangeLogs returns the history of an owned item, newest first. A
// foreign item is reported as ErrItemNotFound before any log is read.
func (r *ItemRepository) ListChangeLogs(ctx context.Context, ownerID, itemID uint) ([]domain.ChangeLog, error) {
	if _, err := r.dao.FindOwned(ctx, ownerID, itemID); err != nil {
		return nil, fmt.Errorf("r.dao.FindOwned -> %w", err)
	}

	entries, err := r.logDAO.FindByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("r.logDAO.FindByItem -> %w", err)
	}

	out := make([]domain.ChangeLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, changeLogDaoToDomain(e))
	}

	return out, nil
}

// WithinTx runs fn in a single transaction. Returning an error from fn
// rolls back every write made through the unit of work.
func (r *ItemRepository) WithinTx(ctx context.Context, fn func(uow ItemUnitOfWork) error) error {
	err := r.dao.Transaction(ctx, func(items *dao.ItemDAO, logs *dao.ChangeLogDAO) error {
		return fn(&itemUnitOfWork{items: items, logs: logs})
	})
	if err != nil {
		return fmt.Errorf("r.dao.Transaction -> %w", err)
	}

	return nil
}

type itemUnitOfWork struct {
	items *dao.ItemDAO
	logs  *dao.ChangeLogDAO
}

func (u *itemUnitOfWork) FindOwnedForUpdate(ctx context.Context, ownerID, id uint) (domain.InventoryItem, error) {
	found, err := u.items.FindOwnedForUpdate(ctx, ownerID, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("u.items.FindOwnedForUpdate -> %w", err)
	}

	return itemDaoToDomain(found), nil
}

func (u *itemUnitOfWork) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	updated, err := u.items.Update(ctx, itemDomainToDao(item))
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("u.items.Update -> %w", err)
	}

	return itemDaoToDomain(updated), nil
}

func (u *itemUnitOfWork) RecordChange(ctx context.Context, entry domain.ChangeLog) (domain.ChangeLog, error) {
	created, err := u.logs.Insert(ctx, dao.ChangeLog{
		ItemID:         entry.ItemID,
		UserID:         entry.UserID,
		QuantityChange: entry.QuantityChange,
	})
	if err != nil {
		return domain.ChangeLog{}, fmt.Errorf("u.logs.Insert -> %w", err)
	}

	recorded := changeLogDaoToDomain(created)
	recorded.Username = entry.Username

	return recorded, nil
}

func itemDomainToDao(i domain.InventoryItem) dao.Item {
	return dao.Item{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		Name:        i.Name,
		Description: i.Description,
		Quantity:    i.Quantity,
		Price:       i.Price,
		Category:    i.Category,
		DateAdded:   i.DateAdded,
		LastUpdated: i.LastUpdated,
	}
}

func itemDaoToDomain(i dao.Item) domain.InventoryItem {
	return domain.InventoryItem{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		Name:        i.Name,
		Description: i.Description,
		Quantity:    i.Quantity,
		Price:       i.Price,
		Category:    i.Category,
		DateAdded:   i.DateAdded,
		LastUpdated: i.LastUpdated,
	}
}

func changeLogDaoToDomain(c dao.ChangeLog) domain.ChangeLog {
	return domain.ChangeLog{
		ID:             c.ID,
		ItemID:         c.ItemID,
		UserID:         c.UserID,
		Username:       c.User.Username,
		QuantityChange: c.QuantityChange,
		Timestamp:      c.Timestamp,
	}
}
