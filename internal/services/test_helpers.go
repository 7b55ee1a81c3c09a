package services

import (
	"time"

	"storefront/internal/domain"
)

func CreateMockOrder(id, owner string, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	o := domain.NewOrder(id, owner, items, domain.ShippingAddress{}, time.Now().UTC())
	if status != domain.StatusPending {
		o.AppendStatus(status, "", time.Now().UTC())
	}
	return o
}

func CreateMockProduct(id uint64, name string, price int64, stock int64) *domain.Product {
	return &domain.Product{
		ID:    id,
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

const (
	TestProductID    = uint64(1)
	TestOrderID      = "8f14e45f-ceea-467f-a0e6-0a1b2c3d4e5f"
	TestOwnerID      = "user-1"
	TestOtherUserID  = "user-2"
	TestAdminID      = "admin-1"
	TestProductName  = "Test Product"
	TestProductPrice = int64(1000)
	TestProductStock = int64(5)
)
