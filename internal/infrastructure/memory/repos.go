package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ── productos ─────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

// GetForUpdate no necesita bloqueo de fila: el mutex global de Run ya
// serializa las transacciones completas.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*entity.Product
	for _, p := range r.s.products {
		if f.OnlyActive && !p.IsActive {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		matched = append(matched, cloneProduct(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *productRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive && p.Available().LessThanOrEqual(p.MinimumStock) {
			matched = append(matched, cloneProduct(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock, reserved decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity = stock
	p.ReservedQuantity = reserved
	return nil
}

func (r *productRepo) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// ── movimientos ───────────────────────────────────────────────────────────

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(_ context.Context, tx *entity.InventoryTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[tx.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (r *transactionRepo) ListByProduct(_ context.Context, productID string, f repository.TransactionFilter) ([]*entity.InventoryTransaction, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*entity.InventoryTransaction
	for _, tx := range r.s.transactions {
		if tx.ProductID != productID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Since != nil && tx.CreatedAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && tx.CreatedAt.After(*f.Until) {
			continue
		}
		matched = append(matched, cloneTransaction(tx))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *transactionRepo) SumBalances(_ context.Context, productID string) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stock, reserved := decimal.Zero, decimal.Zero
	for _, tx := range r.s.transactions {
		if tx.ProductID != productID {
			continue
		}
		stock = stock.Add(tx.BalanceDelta())
		reserved = reserved.Add(tx.ReservedDelta())
	}
	return stock, reserved, nil
}

// ── solicitudes ───────────────────────────────────────────────────────────

type requestRepo struct{ s *Store }

func (r *requestRepo) Create(_ context.Context, req *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[req.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.requests {
		if other.RequestNumber == req.RequestNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *requestRepo) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *requestRepo) GetByNumber(_ context.Context, number string) (*entity.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, req := range r.s.requests {
		if req.RequestNumber == number {
			return cloneRequest(req), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *requestRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.Request, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*entity.Request
	for _, req := range r.s.requests {
		if f.UserID != "" && req.UserID != f.UserID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.Since != nil && req.CreatedAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && req.CreatedAt.After(*f.Until) {
			continue
		}
		matched = append(matched, cloneRequest(req))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *requestRepo) UpdateStatus(_ context.Context, req *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = req.Status
	stored.Notes = req.Notes
	stored.CollectionDate = req.CollectionDate
	stored.DeliveryDate = req.DeliveryDate
	stored.ReturnDate = req.ReturnDate
	stored.UpdatedAt = req.UpdatedAt
	return nil
}

func (r *requestRepo) UpdateItem(_ context.Context, item *entity.RequestItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[item.RequestID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, it := range req.Items {
		if it.ID == item.ID {
			req.Items[i] = cloneItem(item)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *requestRepo) Statistics(_ context.Context, userID string) (*repository.RequestStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &repository.RequestStatistics{ByStatus: make(map[string]int)}
	for _, req := range r.s.requests {
		if userID != "" && req.UserID != userID {
			continue
		}
		stats.Total++
		stats.ByStatus[req.Status]++
	}
	return stats, nil
}

// ── deudas ────────────────────────────────────────────────────────────────

type debtRepo struct{ s *Store }

func (r *debtRepo) Create(_ context.Context, d *entity.Debt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.debts[d.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.debts[d.ID] = cloneDebt(d)
	return nil
}

func (r *debtRepo) GetByID(_ context.Context, id string) (*entity.Debt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.debts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDebt(d), nil
}

func (r *debtRepo) GetForUpdate(ctx context.Context, id string) (*entity.Debt, error) {
	return r.GetByID(ctx, id)
}

func (r *debtRepo) List(_ context.Context, f repository.DebtFilter) ([]*entity.Debt, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*entity.Debt
	for _, d := range r.s.debts {
		if f.UserID != "" && d.UserID != f.UserID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if f.RequestID != "" && (d.RequestID == nil || *d.RequestID != f.RequestID) {
			continue
		}
		matched = append(matched, cloneDebt(d))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *debtRepo) Update(_ context.Context, d *entity.Debt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.debts[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.debts[d.ID] = cloneDebt(d)
	return nil
}

func (r *debtRepo) Statistics(_ context.Context, userID string) (*repository.DebtStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &repository.DebtStatistics{
		ByStatus:      make(map[string]int),
		PendingAmount: decimal.Zero,
	}
	for _, d := range r.s.debts {
		if userID != "" && d.UserID != userID {
			continue
		}
		stats.Total++
		stats.ByStatus[d.Status]++
		if d.Status == entity.DebtStatusPending {
			stats.PendingAmount = stats.PendingAmount.Add(d.TotalAmount)
		}
	}
	return stats, nil
}

// paginate aplica limit/offset sobre el listado ya ordenado. limit <= 0
// devuelve todo desde offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
