package store

import (
	"context"
	"errors"
	"fmt"

	"invoiceflow/backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Repository is the read side of the backend that reports are computed from.
type Repository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetSettings(ctx context.Context) (domain.StoreSettings, error)
}

// LoadSnapshot reads every collection the reports need.
func LoadSnapshot(ctx context.Context, repo Repository) (domain.Snapshot, error) {
	orders, err := repo.ListOrders(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list orders: %w", err)
	}
	customers, err := repo.ListCustomers(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list customers: %w", err)
	}
	items, err := repo.ListItems(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list items: %w", err)
	}
	settings, err := repo.GetSettings(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("get settings: %w", err)
	}
	return domain.Snapshot{
		Orders:    orders,
		Customers: customers,
		Items:     items,
		Settings:  settings,
	}, nil
}
