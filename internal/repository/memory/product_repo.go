package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	logs     []domain.InventoryLog
	nextLog  int64
}

func NewProductRepository(products ...domain.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		r.Put(p)
	}
	return r
}

// Put inserts or replaces a product.
func (r *ProductRepository) Put(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = &p
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("Product", id)
	}
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp, nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, productID string, quantity int, reason, referenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return errs.NewObjectNotFoundError("Product", productID)
	}
	if p.Stock+quantity < 0 {
		return errs.NewValidationError("quantity", "Insufficient stock for "+p.Name)
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()

	r.nextLog++
	r.logs = append(r.logs, domain.InventoryLog{
		ID:           r.nextLog,
		ProductID:    productID,
		ChangeAmount: quantity,
		Reason:       reason,
		ReferenceID:  referenceID,
		CreatedAt:    p.UpdatedAt,
	})
	return nil
}

func (r *ProductRepository) GetInventoryLogs(ctx context.Context, productID string, limit, offset int) ([]domain.InventoryLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.InventoryLog
	for _, l := range r.logs {
		if productID == "" || l.ProductID == productID {
			matched = append(matched, l)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.InventoryLog{}, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}
