package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// CancelNote is recorded in the history entry appended by a cancellation.
const CancelNote = "Order cancelled by user"

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: '%s' is not a valid order status", ErrValidation, v)
	}
	return s, nil
}

type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	OwnerID         string          `json:"user" gorm:"size:64;not null;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     int64           `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"size:16;not null;default:'pending';index"`
	StatusHistory   []StatusEntry   `json:"statusHistory" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"not null"`
}

// OrderItem is the line-item snapshot taken when the order is placed.
// Price is the product's unit price at that moment. Product carries the
// catalog's current name and price on reads and is nil once the product is
// deleted.
type OrderItem struct {
	ID        uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"-" gorm:"size:36;not null;index"`
	Position  int    `json:"-" gorm:"not null"`
	ProductID uint64      `json:"productId" gorm:"not null;index"`
	Product   *ProductRef `json:"product" gorm:"-"`
	Quantity  int64       `json:"quantity" gorm:"not null"`
	Price     int64       `json:"price" gorm:"not null"`
}

type StatusEntry struct {
	ID        uint64      `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string      `json:"-" gorm:"size:36;not null;index"`
	Status    OrderStatus `json:"status" gorm:"size:16;not null"`
	Timestamp time.Time   `json:"timestamp" gorm:"not null"`
	Note      string      `json:"note,omitempty" gorm:"size:512"`
}

type ShippingAddress struct {
	Street  string `json:"street,omitempty" gorm:"size:255"`
	City    string `json:"city,omitempty" gorm:"size:128"`
	State   string `json:"state,omitempty" gorm:"size:128"`
	ZipCode string `json:"zipCode,omitempty" gorm:"size:32"`
	Country string `json:"country,omitempty" gorm:"size:128"`
}

// LineRequest is one requested (product, quantity) pair of a new order.
type LineRequest struct {
	ProductID uint64
	Quantity  int64
}

// NewOrder builds a pending order from priced line items. The total is
// computed here once and never recalculated afterwards.
func NewOrder(id, owner string, items []OrderItem, addr ShippingAddress, now time.Time) *Order {
	var total int64
	for i := range items {
		items[i].OrderID = id
		items[i].Position = i
		total += items[i].Price * items[i].Quantity
	}
	return &Order{
		ID:              id,
		OwnerID:         owner,
		Items:           items,
		TotalAmount:     total,
		Status:          StatusPending,
		StatusHistory:   []StatusEntry{{OrderID: id, Status: StatusPending, Timestamp: now}},
		ShippingAddress: addr,
		CreatedAt:       now,
	}
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID string) bool {
	return o.OwnerID == userID
}

// AppendStatus sets the current status and records it in the history.
func (o *Order) AppendStatus(s OrderStatus, note string, at time.Time) StatusEntry {
	e := StatusEntry{OrderID: o.ID, Status: s, Timestamp: at, Note: note}
	o.Status = s
	o.StatusHistory = append(o.StatusHistory, e)
	return e
}
