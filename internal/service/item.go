package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/repository"
	"github.com/vietanh2810/inventory-api/internal/telemetry"
)

var (
	ErrItemNotFound       = repository.ErrItemNotFound
	ErrConcurrentUpdate   = repository.ErrConcurrentUpdate
	ErrZeroQuantityChange = domain.ErrZeroQuantityChange
)

type ItemRepository interface {
	Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	FindOwned(ctx context.Context, ownerID, id uint) (domain.InventoryItem, error)
	List(ctx context.Context, ownerID uint, filter domain.ItemFilter) ([]domain.InventoryItem, error)
	Delete(ctx context.Context, ownerID, id uint) error
	WithinTx(ctx context.Context, fn func(uow repository.ItemUnitOfWork) error) error
}

type ItemService struct {
	repo   ItemRepository
	tracer trace.Tracer
}

func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{
		repo:   repo,
		tracer: otel.Tracer(telemetry.TracerName),
	}
}

func (s *ItemService) List(ctx context.Context, principal domain.User, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	ctx, span := s.tracer.Start(ctx, "item.list", trace.WithAttributes(attribute.Int64("user.id", int64(principal.ID))))
	defer span.End()

	items, err := s.repo.List(ctx, principal.ID, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return items, nil
}

// Create stores a new item owned by principal. The initial stock is not
// recorded in the change log.
func (s *ItemService) Create(ctx context.Context, principal domain.User, item domain.InventoryItem) (domain.InventoryItem, error) {
	ctx, span := s.tracer.Start(ctx, "item.create", trace.WithAttributes(attribute.Int64("user.id", int64(principal.ID))))
	defer span.End()

	item.ID = 0
	item.OwnerID = principal.ID

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.InventoryItem{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ItemService) Get(ctx context.Context, principal domain.User, id uint) (domain.InventoryItem, error) {
	ctx, span := s.tracer.Start(ctx, "item.get", itemAttrs(principal, id))
	defer span.End()

	item, err := s.repo.FindOwned(ctx, principal.ID, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("s.repo.FindOwned -> %w", err)
	}

	return item, nil
}

// UpdateItem applies patch to an owned item under a row lock and records
// the resulting quantity change, if any, in the same transaction. The
// delta is computed from the persisted row, so concurrent updates of the
// same item are serialised and every committed change is logged once.
func (s *ItemService) UpdateItem(ctx context.Context, principal domain.User, id uint, patch domain.ItemPatch) (domain.InventoryItem, error) {
	ctx, span := s.tracer.Start(ctx, "item.update", itemAttrs(principal, id))
	defer span.End()

	var updated domain.InventoryItem
	err := s.repo.WithinTx(ctx, func(uow repository.ItemUnitOfWork) error {
		current, err := uow.FindOwnedForUpdate(ctx, principal.ID, id)
		if err != nil {
			return fmt.Errorf("uow.FindOwnedForUpdate -> %w", err)
		}
		before := current.Quantity

		patch.Apply(&current)
		persisted, err := uow.Update(ctx, current)
		if err != nil {
			return fmt.Errorf("uow.Update -> %w", err)
		}

		if delta := persisted.Quantity - before; delta != 0 {
			if _, err = recordChange(ctx, uow, persisted, principal, delta); err != nil {
				return fmt.Errorf("recordChange -> %w", err)
			}
			span.SetAttributes(attribute.Int("item.quantity_change", delta))
		}

		updated = persisted
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		zap.L().Debug("item update rolled back",
			zap.Uint("itemID", id),
			zap.Uint("userID", principal.ID),
			zap.Error(err),
		)
		return domain.InventoryItem{}, fmt.Errorf("s.repo.WithinTx -> %w", err)
	}

	return updated, nil
}

func (s *ItemService) Delete(ctx context.Context, principal domain.User, id uint) error {
	ctx, span := s.tracer.Start(ctx, "item.delete", itemAttrs(principal, id))
	defer span.End()

	if err := s.repo.Delete(ctx, principal.ID, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func itemAttrs(principal domain.User, itemID uint) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.Int64("user.id", int64(principal.ID)),
		attribute.Int64("item.id", int64(itemID)),
	)
}
