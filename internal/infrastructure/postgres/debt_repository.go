package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// DebtRepository implementa repository.DebtRepository sobre PostgreSQL.
type DebtRepository struct {
	q Querier
}

// NewDebtRepository construye el repositorio de deudas.
func NewDebtRepository(q Querier) *DebtRepository {
	return &DebtRepository{q: q}
}

const debtColumns = `id, user_id, product_id, request_id, item_id, type,
	quantity, unit_price, total_amount, status, description, created_by,
	resolved_by, resolved_date, due_date, created_at, updated_at`

func scanDebt(row interface{ Scan(...any) error }) (*entity.Debt, error) {
	var d entity.Debt
	err := row.Scan(
		&d.ID, &d.UserID, &d.ProductID, &d.RequestID, &d.ItemID, &d.Type,
		&d.Quantity, &d.UnitPrice, &d.TotalAmount, &d.Status, &d.Description, &d.CreatedBy,
		&d.ResolvedBy, &d.ResolvedDate, &d.DueDate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// Create inserta la deuda.
func (r *DebtRepository) Create(ctx context.Context, d *entity.Debt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO debts (id, user_id, product_id, request_id, item_id, type,
			quantity, unit_price, total_amount, status, description, created_by,
			resolved_by, resolved_date, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		d.ID, d.UserID, d.ProductID, d.RequestID, d.ItemID, d.Type,
		d.Quantity, d.UnitPrice, d.TotalAmount, d.Status, d.Description, d.CreatedBy,
		d.ResolvedBy, d.ResolvedDate, d.DueDate, d.CreatedAt, d.UpdatedAt,
	)
	return mapError(err)
}

// GetByID obtiene la deuda por su ID.
func (r *DebtRepository) GetByID(ctx context.Context, id string) (*entity.Debt, error) {
	return scanDebt(r.q.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1`, id))
}

// GetForUpdate obtiene la deuda bloqueando su fila hasta el fin de la
// transacción. Dos resoluciones concurrentes quedan serializadas aquí y la
// segunda ve el estado ya resuelto.
func (r *DebtRepository) GetForUpdate(ctx context.Context, id string) (*entity.Debt, error) {
	return scanDebt(r.q.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1 FOR UPDATE`, id))
}

// List devuelve deudas filtradas, de la más reciente a la más antigua, con el
// total sin paginar.
func (r *DebtRepository) List(ctx context.Context, f repository.DebtFilter) ([]*entity.Debt, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != "" {
		conds = append(conds, "user_id = "+arg(f.UserID))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.Type != "" {
		conds = append(conds, "type = "+arg(f.Type))
	}
	if f.RequestID != "" {
		conds = append(conds, "request_id = "+arg(f.RequestID))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM debts`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + debtColumns + ` FROM debts` + where + ` ORDER BY created_at DESC`
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

	var debts []*entity.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, 0, err
		}
		debts = append(debts, d)
	}
	return debts, total, mapError(rows.Err())
}

// Update persiste el estado y la resolución de la deuda.
func (r *DebtRepository) Update(ctx context.Context, d *entity.Debt) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE debts
		SET status = $2, description = $3, resolved_by = $4, resolved_date = $5,
			due_date = $6, updated_at = $7
		WHERE id = $1`,
		d.ID, d.Status, d.Description, d.ResolvedBy, d.ResolvedDate,
		d.DueDate, d.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}

// Statistics resume deudas por estado con el monto pendiente acumulado,
// opcionalmente de un solo usuario.
func (r *DebtRepository) Statistics(ctx context.Context, userID string) (*repository.DebtStatistics, error) {
	query := `
		SELECT status, COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'pending'), 0)
		FROM debts`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` GROUP BY status`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	stats := &repository.DebtStatistics{
		ByStatus:      make(map[string]int),
		PendingAmount: decimal.Zero,
	}
	for rows.Next() {
		var (
			status  string
			count   int
			pending decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &pending); err != nil {
			return nil, mapError(err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
		stats.PendingAmount = stats.PendingAmount.Add(pending)
	}
	return stats, mapError(rows.Err())
}
