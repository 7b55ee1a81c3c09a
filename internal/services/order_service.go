package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// OrderCache caches order listings per requester scope. Implementations
// must treat their own failures as misses. GetOrders reports the scope's
// generation; SetOrders with a generation older than the latest Invalidate
// must not become visible.
type OrderCache interface {
	GetOrders(ctx context.Context, scope string) ([]domain.Order, uint64, bool)
	SetOrders(ctx context.Context, scope string, gen uint64, orders []domain.Order)
	Invalidate(ctx context.Context, scopes ...string)
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher infra.EventPublisher
	cache     OrderCache
	metrics   *metrics.Metrics
	log       *slog.Logger

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	pub infra.EventPublisher,
	m *metrics.Metrics,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		publisher: pub,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *OrderService) SetCache(c OrderCache) {
	s.cache = c
}

// CreateOrder reserves stock for every line in order and persists a pending
// order. Each reservation is a conditional decrement; if any line fails or
// the order cannot be saved, the reservations already taken are given back,
// so the call either fully succeeds or leaves stock untouched.
func (s *OrderService) CreateOrder(ctx context.Context, ownerID string, lines []domain.LineRequest, addr domain.ShippingAddress) (*domain.Order, error) {
	if err := validateLines(ownerID, lines); err != nil {
		s.metrics.OrdersRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	reserved := make([]domain.LineRequest, 0, len(lines))

	for _, line := range lines {
		prod, err := s.products.FindByID(ctx, line.ProductID)
		if err == nil && prod == nil {
			err = fmt.Errorf("%w: %d", domain.ErrProductNotFound, line.ProductID)
		}
		if err == nil {
			err = s.reserve(ctx, prod, line.Quantity)
		}
		if err != nil {
			s.release(ctx, reserved)
			s.metrics.OrdersRejected.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}

		reserved = append(reserved, line)
		items = append(items, domain.OrderItem{
			ProductID: prod.ID,
			Product:   prod.Ref(),
			Quantity:  line.Quantity,
			Price:     prod.Price,
		})
	}

	order := domain.NewOrder(s.newID(), ownerID, items, addr, s.now())
	if err := s.orders.Save(ctx, order); err != nil {
		s.release(ctx, reserved)
		s.metrics.OrdersRejected.WithLabelValues("persistence").Inc()
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	s.log.Info("order created", "order_id", order.ID, "owner", ownerID, "items", len(items), "total", order.TotalAmount)
	s.invalidate(ctx, ownerID)
	s.publish(domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OwnerID:     order.OwnerID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	})

	return order, nil
}

func (s *OrderService) reserve(ctx context.Context, prod *domain.Product, qty int64) error {
	err := s.products.DecrementStock(ctx, prod.ID, qty)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInsufficientStock):
		return fmt.Errorf("%w for product: %s", domain.ErrInsufficientStock, prod.Name)
	case errors.Is(err, domain.ErrProductNotFound):
		return fmt.Errorf("%w: %d", domain.ErrProductNotFound, prod.ID)
	default:
		return err
	}
}

// release undoes reservations of a failed create. It must run even when the
// request context is already cancelled.
func (s *OrderService) release(ctx context.Context, reserved []domain.LineRequest) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range reserved {
		ok, err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			s.log.Error("stock compensation failed", "product_id", line.ProductID, "amount", line.Quantity, "err", err)
			continue
		}
		if !ok {
			s.log.Warn("stock compensation skipped, product gone", "product_id", line.ProductID)
		}
	}
}

// GetOrders lists every order for admins and only the caller's own orders
// for everyone else.
func (s *OrderService) GetOrders(ctx context.Context, req domain.Requester) ([]domain.Order, error) {
	scope := ownerScope(req.UserID)
	if req.IsAdmin() {
		scope = scopeAll
	}

	var gen uint64
	if s.cache != nil {
		orders, g, ok := s.cache.GetOrders(ctx, scope)
		if ok {
			return orders, nil
		}
		gen = g
	}

	var (
		orders []domain.Order
		err    error
	)
	if req.IsAdmin() {
		orders, err = s.orders.FindAll(ctx)
	} else {
		orders, err = s.orders.FindByOwner(ctx, req.UserID)
	}
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	if s.cache != nil {
		s.cache.SetOrders(ctx, scope, gen, orders)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string, req domain.Requester) (*domain.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanAccess(o) {
		return nil, fmt.Errorf("%w to access this order", domain.ErrForbidden)
	}
	return o, nil
}

// UpdateOrderStatus sets any valid status and always appends a history
// entry, even when the status does not change. Stock is never touched here.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, note string, req domain.Requester) (*domain.Order, error) {
	if !req.IsAdmin() {
		return nil, fmt.Errorf("%w to update this order", domain.ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: '%s' is not a valid order status", domain.ErrValidation, status)
	}

	entry := domain.StatusEntry{Status: status, Timestamp: s.now(), Note: note}
	found, err := s.orders.AppendStatus(ctx, id, entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrOrderNotFound
	}

	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.StatusUpdates.WithLabelValues(string(status)).Inc()
	s.log.Info("order status updated", "order_id", id, "status", status, "by", req.UserID)
	s.invalidate(ctx, o.OwnerID)
	s.publish(domain.EventOrderStatusUpdated, domain.OrderStatusEvent{
		OrderID:   id,
		OwnerID:   o.OwnerID,
		Status:    status,
		Note:      note,
		Timestamp: entry.Timestamp,
	})
	return o, nil
}

// CancelOrder moves a pending order to cancelled and gives its stock back.
// The status change is a compare-and-set on pending, so concurrent cancels
// restore stock at most once.
func (s *OrderService) CancelOrder(ctx context.Context, id string, req domain.Requester) (*domain.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanAccess(o) {
		return nil, fmt.Errorf("%w to cancel this order", domain.ErrForbidden)
	}
	if o.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}

	entry := domain.StatusEntry{Status: domain.StatusCancelled, Timestamp: s.now(), Note: domain.CancelNote}
	applied, err := s.orders.TransitionStatus(ctx, id, domain.StatusPending, entry)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrInvalidTransition
	}

	s.restoreStock(ctx, o)
	o.AppendStatus(entry.Status, entry.Note, entry.Timestamp)

	s.metrics.OrdersCancel.Inc()
	s.log.Info("order cancelled", "order_id", id, "by", req.UserID)
	s.invalidate(ctx, o.OwnerID)
	s.publish(domain.EventOrderCancelled, domain.OrderStatusEvent{
		OrderID:   id,
		OwnerID:   o.OwnerID,
		Status:    domain.StatusCancelled,
		Note:      entry.Note,
		Timestamp: entry.Timestamp,
	})
	return o, nil
}

// restoreStock is best effort per line. A product deleted since the order was
// placed is skipped with a warning instead of failing the cancellation.
func (s *OrderService) restoreStock(ctx context.Context, o *domain.Order) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range o.Items {
		ok, err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.log.Error("stock restore failed", "order_id", o.ID, "product_id", item.ProductID, "amount", item.Quantity, "err", err)
			continue
		}
		if !ok {
			s.metrics.RestoreSkipped.Inc()
			s.log.Warn("stock restore skipped, product gone", "order_id", o.ID, "product_id", item.ProductID)
		}
	}
}

func (s *OrderService) find(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, scopeAll, ownerScope(ownerID))
}

// publish sends evt in the background. After Wait has been called events are
// dropped, so no publication can start while Wait is draining.
func (s *OrderService) publish(pattern string, evt any) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn("event dropped, service is shutting down", "pattern", pattern)
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			s.log.Error("event publish failed", "pattern", pattern, "err", err)
		}
	}()
}

// Wait stops new event publications and blocks until the ones already
// started have finished.
func (s *OrderService) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.inflight.Wait()
}

const scopeAll = "all"

func ownerScope(ownerID string) string {
	return "owner:" + ownerID
}

func validateLines(ownerID string, lines []domain.LineRequest) error {
	if ownerID == "" {
		return fmt.Errorf("%w: order owner is required", domain.ErrValidation)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}
	for i, l := range lines {
		if l.ProductID == 0 {
			return fmt.Errorf("%w: item %d has no product", domain.ErrValidation, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
		}
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}
