package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// InventoryTransactionRepository implementa el libro de movimientos sobre
// PostgreSQL. Solo inserta y lee: los movimientos nunca se modifican.
type InventoryTransactionRepository struct {
	q Querier
}

// NewInventoryTransactionRepository construye el repositorio de movimientos.
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepository {
	return &InventoryTransactionRepository{q: q}
}

// Create inserta el movimiento.
func (r *InventoryTransactionRepository) Create(ctx context.Context, tx *entity.InventoryTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_transactions (id, product_id, type, quantity,
			reference_type, reference_id, performed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.ProductID, tx.Type, tx.Quantity,
		tx.ReferenceType, tx.ReferenceID, tx.PerformedBy, tx.Notes, tx.CreatedAt,
	)
	return mapError(err)
}

// ListByProduct devuelve el historial del producto, del más reciente al más
// antiguo, con el total sin paginar.
func (r *InventoryTransactionRepository) ListByProduct(ctx context.Context, productID string, f repository.TransactionFilter) ([]*entity.InventoryTransaction, int, error) {
	conds := []string{"product_id = $1"}
	args := []any{productID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		conds = append(conds, "type = "+arg(f.Type))
	}
	if f.Since != nil {
		conds = append(conds, "created_at >= "+arg(*f.Since))
	}
	if f.Until != nil {
		conds = append(conds, "created_at <= "+arg(*f.Until))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `
		SELECT id, product_id, type, quantity, reference_type, reference_id,
			performed_by, notes, created_at
		FROM inventory_transactions` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var txs []*entity.InventoryTransaction
	for rows.Next() {
		var tx entity.InventoryTransaction
		if err := rows.Scan(
			&tx.ID, &tx.ProductID, &tx.Type, &tx.Quantity,
			&tx.ReferenceType, &tx.ReferenceID, &tx.PerformedBy, &tx.Notes, &tx.CreatedAt,
		); err != nil {
			return nil, 0, mapError(err)
		}
		txs = append(txs, &tx)
	}
	return txs, total, mapError(rows.Err())
}

// SumBalances recalcula las dos proyecciones del producto desde el libro.
func (r *InventoryTransactionRepository) SumBalances(ctx context.Context, productID string) (decimal.Decimal, decimal.Decimal, error) {
	var stock, reserved decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE type
				WHEN 'in' THEN quantity
				WHEN 'return' THEN quantity
				WHEN 'adjustment' THEN quantity
				WHEN 'out' THEN -quantity
				ELSE 0 END), 0),
			COALESCE(SUM(CASE type
				WHEN 'reserve' THEN quantity
				WHEN 'release' THEN -quantity
				ELSE 0 END), 0)
		FROM inventory_transactions
		WHERE product_id = $1`, productID,
	).Scan(&stock, &reserved)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapError(err)
	}
	return stock, reserved, nil
}
