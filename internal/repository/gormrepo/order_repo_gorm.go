package gormrepo

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewOrderRepository(db *gorm.DB, log *slog.Logger) repository.OrderRepository {
	return &orderRepo{db: db, log: log}
}

// Save inserts the order together with its line items and status history.
func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		r.log.Error("order save failed", "order_id", order.ID, "err", err)
		return err
	}
	r.log.Debug("order saved", "order_id", order.ID, "items", len(order.Items))
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.withChildren(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("order lookup failed", "order_id", id, "err", err)
		return nil, err
	}
	if err := r.attachProducts(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.withChildren(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		r.log.Error("order list failed", "err", err)
		return nil, err
	}
	if err := r.attachProducts(ctx, ordersOf(out)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.withChildren(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		r.log.Error("order list failed", "owner", ownerID, "err", err)
		return nil, err
	}
	if err := r.attachProducts(ctx, ordersOf(out)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true
		if err := tx.Model(&domain.Order{}).Where("id = ?", id).Update("status", entry.Status).Error; err != nil {
			return err
		}
		entry.OrderID = id
		return tx.Create(&entry).Error
	})
	if err != nil {
		r.log.Error("order status update failed", "order_id", id, "status", entry.Status, "err", err)
		return false, err
	}
	return found, nil
}

// TransitionStatus relies on the row count of the guarded update, so from
// and entry.Status must differ.
func (r *orderRepo) TransitionStatus(ctx context.Context, id string, from domain.OrderStatus, entry domain.StatusEntry) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", entry.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		entry.OrderID = id
		return tx.Create(&entry).Error
	})
	if err != nil {
		r.log.Error("order status transition failed", "order_id", id, "from", from, "to", entry.Status, "err", err)
		return false, err
	}
	return applied, nil
}

func (r *orderRepo) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// attachProducts fills Item.Product from the catalog with one query. Lines
// whose product no longer exists keep a nil Product.
func (r *orderRepo) attachProducts(ctx context.Context, orders ...*domain.Order) error {
	seen := make(map[uint64]struct{})
	var ids []uint64
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var products []domain.Product
	if err := r.db.WithContext(ctx).Select("id", "name", "price").Where("id IN ?", ids).Find(&products).Error; err != nil {
		r.log.Error("order product lookup failed", "products", len(ids), "err", err)
		return err
	}
	byID := make(map[uint64]*domain.ProductRef, len(products))
	for i := range products {
		byID[products[i].ID] = products[i].Ref()
	}
	for _, o := range orders {
		for i := range o.Items {
			o.Items[i].Product = byID[o.Items[i].ProductID]
		}
	}
	return nil
}

func ordersOf(list []domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}
