package domain

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidTransition = errors.New("can only cancel pending orders")
	ErrValidation        = errors.New("invalid request")
)
