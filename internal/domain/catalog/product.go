package catalog

import (
	"strings"
	"time"

	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is a soft-deletable catalog aggregate.
type Product struct {
	aggregates.Base
	aggregates.Deletion

	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"size:500;not null" json:"description"`
	Price       float64       `gorm:"type:numeric(18,2);not null" json:"price"`
	Currency    string        `gorm:"size:3;not null" json:"currency"`
	Stock       int           `gorm:"not null" json:"stock"`
	Status      ProductStatus `gorm:"size:20;not null;index" json:"status"`
}

func (Product) TableName() string { return "products" }

// NewProduct builds an active product with a fresh identifier.
func NewProduct(name, description string, price float64, currency string, stock int, createdBy *string) (*Product, error) {
	money, err := NewMoney(price, currency)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregates.ValidationError("product.new", "name is required")
	}
	if len(name) > 100 {
		return nil, aggregates.ValidationError("product.new", "name exceeds 100 characters")
	}
	if len(description) > 500 {
		return nil, aggregates.ValidationError("product.new", "description exceeds 500 characters")
	}
	if stock < 0 {
		return nil, aggregates.ValidationError("product.new", "stock cannot be negative")
	}
	return &Product{
		Base:        aggregates.NewBase(createdBy, time.Now()),
		Name:        name,
		Description: description,
		Price:       money.Amount,
		Currency:    money.Currency,
		Stock:       stock,
		Status:      ProductStatusActive,
	}, nil
}

func (p *Product) Money() Money {
	return Money{Amount: p.Price, Currency: p.Currency}
}

func (p *Product) UpdateStock(newStock int, updatedBy *string) error {
	if newStock < 0 {
		return aggregates.ValidationError("product.update_stock", "stock cannot be negative")
	}
	p.Stock = newStock
	p.Touch(updatedBy, time.Now())
	return nil
}

func (p *Product) UpdatePrice(newPrice float64, currency string, updatedBy *string) error {
	money, err := NewMoney(newPrice, currency)
	if err != nil {
		return err
	}
	p.Price = money.Amount
	p.Currency = money.Currency
	p.Touch(updatedBy, time.Now())
	return nil
}

func (p *Product) Activate(updatedBy *string) {
	p.Status = ProductStatusActive
	p.Touch(updatedBy, time.Now())
}

func (p *Product) Deactivate(updatedBy *string) {
	p.Status = ProductStatusInactive
	p.Touch(updatedBy, time.Now())
}

// SoftDelete flags the product deleted and deactivates it.
func (p *Product) SoftDelete(deletedBy *string) error {
	if err := p.MarkDeleted(deletedBy, time.Now()); err != nil {
		return err
	}
	p.Status = ProductStatusInactive
	return nil
}

// Restore clears the deletion flags. Status stays inactive until the caller calls Activate.
func (p *Product) Restore(restoredBy *string) error {
	if err := p.ClearDeleted(); err != nil {
		return err
	}
	p.Touch(restoredBy, time.Now())
	return nil
}

// LowOnStock reports whether an active product sits at or below threshold.
func (p *Product) LowOnStock(threshold int) bool {
	return !p.IsDeleted && p.Status == ProductStatusActive && p.Stock <= threshold
}
