package http

import "storefront/internal/domain"

type OrderItemRequest struct {
	Product  uint64 `json:"product" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// Response is the envelope of every order endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r CreateOrderRequest) lines() []domain.LineRequest {
	out := make([]domain.LineRequest, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, domain.LineRequest{ProductID: it.Product, Quantity: it.Quantity})
	}
	return out
}

func (r CreateOrderRequest) address() domain.ShippingAddress {
	if r.ShippingAddress == nil {
		return domain.ShippingAddress{}
	}
	a := r.ShippingAddress
	return domain.ShippingAddress{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}
