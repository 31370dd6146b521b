package domain

import (
	"context"
	"time"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Product is the slice of the catalog the order core reads. Catalog
// management lives elsewhere.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"basePrice"`
	SalePrice *float64  `json:"salePrice"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"isActive"`
	Images    []string  `json:"images"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, else the base price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.BasePrice
}

func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Inventory log reasons
const (
	StockReasonOrderPlaced   = "order_placed"
	StockReasonCancelRestock = "cancel_restock"
	StockReasonReturnRestock = "return_restock"
)

type InventoryLog struct {
	ID           int64     `json:"id"`
	ProductID    string    `json:"productId"`
	ChangeAmount int       `json:"changeAmount"` // +10 or -5
	Reason       string    `json:"reason"`
	ReferenceID  string    `json:"referenceId"` // OrderID
	CreatedAt    time.Time `json:"createdAt"`
}

// ProductRepository is the Product Stock Store.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
	// UpdateStock adds quantity (negative to deduct) and writes an inventory
	// log row. Deductions below zero fail with a validation error.
	UpdateStock(ctx context.Context, productID string, quantity int, reason, referenceID string) error
	GetInventoryLogs(ctx context.Context, productID string, limit, offset int) ([]InventoryLog, int64, error)
}
