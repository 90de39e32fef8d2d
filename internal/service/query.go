package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/telemetry"
)

type QueryRepository interface {
	FindOwned(ctx context.Context, ownerID, id uint) (domain.InventoryItem, error)
	ListQuantities(ctx context.Context, ownerID uint) ([]domain.ItemQuantity, error)
	ListChangeLogs(ctx context.Context, ownerID, itemID uint) ([]domain.ChangeLog, error)
}

// QueryService serves the read-only projections: stock levels and the
// change history of an item.
type QueryService struct {
	repo   QueryRepository
	tracer trace.Tracer
}

func NewQueryService(repo QueryRepository) *QueryService {
	return &QueryService{
		repo:   repo,
		tracer: otel.Tracer(telemetry.TracerName),
	}
}

func (s *QueryService) ListQuantities(ctx context.Context, principal domain.User) ([]domain.ItemQuantity, error) {
	ctx, span := s.tracer.Start(ctx, "query.list_quantities")
	defer span.End()

	rows, err := s.repo.ListQuantities(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListQuantities -> %w", err)
	}

	return rows, nil
}

func (s *QueryService) GetQuantity(ctx context.Context, principal domain.User, id uint) (domain.ItemQuantity, error) {
	ctx, span := s.tracer.Start(ctx, "query.get_quantity", itemAttrs(principal, id))
	defer span.End()

	item, err := s.repo.FindOwned(ctx, principal.ID, id)
	if err != nil {
		return domain.ItemQuantity{}, fmt.Errorf("s.repo.FindOwned -> %w", err)
	}

	return domain.ItemQuantity{ID: item.ID, Name: item.Name, Quantity: item.Quantity}, nil
}

// ChangeHistory lists the change log of an owned item, newest first.
func (s *QueryService) ChangeHistory(ctx context.Context, principal domain.User, itemID uint) ([]domain.ChangeLog, error) {
	ctx, span := s.tracer.Start(ctx, "query.change_history", itemAttrs(principal, itemID))
	defer span.End()

	entries, err := s.repo.ListChangeLogs(ctx, principal.ID, itemID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListChangeLogs -> %w", err)
	}

	return entries, nil
}
