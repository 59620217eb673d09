package services

import (
	"context"
	"fmt"
	"log/slog"

	"gestor/internal/core"
)

// OrderService handles order CRUD. Totals are always derived through the
// core pricing calculator, never stored.
type OrderService struct {
	store orderStore
	hub   *SnapshotHub
}

func NewOrderService(store orderStore, hub *SnapshotHub) *OrderService {
	return &OrderService{store: store, hub: hub}
}

func (s *OrderService) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}
	created, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return core.Order{}, fmt.Errorf("save order: %w", err)
	}
	s.notifyOrders(ctx)
	return created, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, o core.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateOrder(ctx, o); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	s.notifyOrders(ctx)
	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.notifyOrders(ctx)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (core.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *OrderService) List(ctx context.Context) ([]core.Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrderService) notifyOrders(ctx context.Context) {
	if s.hub == nil {
		return
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load order snapshot", "error", err)
		return
	}
	s.hub.publishOrders(orders)
}
