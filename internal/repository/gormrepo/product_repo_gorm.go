package gormrepo

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewProductRepository(db *gorm.DB, log *slog.Logger) repository.ProductRepository {
	return &productRepo{db: db, log: log}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("product lookup failed", "product_id", id, "err", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetStock(ctx context.Context, id uint64) (int64, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Select("id", "stock").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// DecrementStock checks and decrements in a single UPDATE so concurrent
// orders cannot both pass the check.
func (r *productRepo) DecrementStock(ctx context.Context, id uint64, amount int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		r.log.Error("stock decrement failed", "product_id", id, "amount", amount, "err", res.Error)
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}

func (r *productRepo) IncrementStock(ctx context.Context, id uint64, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", amount))
	if res.Error != nil {
		r.log.Error("stock increment failed", "product_id", id, "amount", amount, "err", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
