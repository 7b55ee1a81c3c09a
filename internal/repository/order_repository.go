package repository

import (
	"context"

	"storefront/internal/domain"
)

// OrderRepository returns nil, nil from the Find methods when nothing matches.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	// AppendStatus sets the order status and appends entry to its history
	// in one step. Reports false when the order does not exist.
	AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (bool, error)
	// TransitionStatus is AppendStatus guarded by the current status: it only
	// applies when the stored status equals from. Reports whether it applied.
	TransitionStatus(ctx context.Context, id string, from domain.OrderStatus, entry domain.StatusEntry) (bool, error)
}

// ProductRepository is the stock ledger. DecrementStock is a single
// conditional update and fails with domain.ErrInsufficientStock without
// mutating anything when stock would go negative.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	GetStock(ctx context.Context, id uint64) (int64, error)
	DecrementStock(ctx context.Context, id uint64, amount int64) error
	// IncrementStock reports false when the product no longer exists.
	IncrementStock(ctx context.Context, id uint64, amount int64) (bool, error)
}
