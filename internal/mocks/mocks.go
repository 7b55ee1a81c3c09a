package mocks

import (
	"context"

	"storefront/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockOrderCache struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (bool, error) {
	args := m.Called(ctx, id, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, id string, from domain.OrderStatus, entry domain.StatusEntry) (bool, error) {
	args := m.Called(ctx, id, from, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetStock(ctx context.Context, id uint64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uint64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uint64, amount int64) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderCache) GetOrders(ctx context.Context, scope string) ([]domain.Order, uint64, bool) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Bool(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(uint64), args.Bool(2)
}

func (m *MockOrderCache) SetOrders(ctx context.Context, scope string, gen uint64, orders []domain.Order) {
	m.Called(ctx, scope, gen, orders)
}

func (m *MockOrderCache) Invalidate(ctx context.Context, scopes ...string) {
	m.Called(ctx, scopes)
}
