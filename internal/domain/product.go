package domain

import "time"

// Product is owned by the catalog; the order service only reads it and
// moves its Stock.
type Product struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Price     int64     `json:"price" gorm:"not null"`
	Stock     int64     `json:"stock" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ProductRef is the part of a product shown on an order line.
type ProductRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (p *Product) Ref() *ProductRef {
	return &ProductRef{ID: p.ID, Name: p.Name, Price: p.Price}
}
