package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// TransactionFilter acota el historial de movimientos de un producto.
type TransactionFilter struct {
	Type   string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// InventoryTransactionRepository es el puerto del libro de movimientos.
// Los movimientos son inmutables: solo hay inserción y lectura.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	ListByProduct(ctx context.Context, productID string, f TransactionFilter) ([]*entity.InventoryTransaction, int, error)
	// SumBalances recalcula las dos proyecciones del producto desde el libro:
	// saldo físico (in + return + adjustment - out) y reservado (reserve - release).
	SumBalances(ctx context.Context, productID string) (stock, reserved decimal.Decimal, err error)
}
