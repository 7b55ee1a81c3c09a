package domain

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderCancelled     = "order.cancelled"
)

type OrderCreatedEvent struct {
	OrderID     string      `json:"orderId"`
	OwnerID     string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type OrderStatusEvent struct {
	OrderID   string      `json:"orderId"`
	OwnerID   string      `json:"userId"`
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e OrderCreatedEvent) PartitionKey() string { return e.OrderID }

func (e OrderStatusEvent) PartitionKey() string { return e.OrderID }
