package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

// IdempotencyStore claims request keys; see cache.IdempotencyStore.
type IdempotencyStore interface {
	Key(scope, userID, key string) string
	Seen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Handler struct {
	service *services.OrderService
	idem    IdempotencyStore
	secret  []byte
	log     *slog.Logger
}

func NewHandler(s *services.OrderService, jwtSecret []byte, log *slog.Logger) *Handler {
	return &Handler{service: s, secret: jwtSecret, log: log}
}

func (h *Handler) SetIdempotencyStore(s IdempotencyStore) {
	h.idem = s
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	orders := r.Group("/orders", Protect(h.secret))
	orders.GET("", h.GetOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", Authorize(domain.RoleAdmin), h.UpdateOrderStatus)
	orders.PUT("/:id/cancel", h.CancelOrder)
}

func (h *Handler) GetOrders(c *gin.Context) {
	orders, err := h.service.GetOrders(c.Request.Context(), requester(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	n := len(orders)
	c.JSON(http.StatusOK, Response{Success: true, Count: &n, Data: orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"), requester(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: order})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	caller := requester(c)

	idemKey := ""
	if k := c.GetHeader(idempotencyHeader); k != "" && h.idem != nil {
		idemKey = h.idem.Key("orders", caller.UserID, k)
		seen, err := h.idem.Seen(ctx, idemKey)
		switch {
		case err != nil:
			h.log.Warn("idempotency check failed, continuing", "err", err)
			idemKey = ""
		case seen:
			c.JSON(http.StatusConflict, Response{Success: false, Error: "Duplicate request for idempotency key " + k})
			return
		}
	}

	order, err := h.service.CreateOrder(ctx, caller.UserID, req.lines(), req.address())
	if err != nil {
		if idemKey != "" {
			h.releaseKey(idemKey)
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), c.Param("id"), status, req.Note, requester(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.service.CancelOrder(c.Request.Context(), c.Param("id"), requester(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: order})
}

func (h *Handler) releaseKey(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.idem.Release(ctx, key); err != nil {
		h.log.Warn("idempotency key release failed", "key", key, "err", err)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HealthHandler reports 503 when ping fails.
func HealthHandler(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
