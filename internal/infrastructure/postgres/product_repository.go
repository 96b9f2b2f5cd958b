package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository sobre PostgreSQL.
type ProductRepository struct {
	q Querier
}

// NewProductRepository construye el repositorio de productos.
func NewProductRepository(q Querier) *ProductRepository {
	return &ProductRepository{q: q}
}

const productColumns = `id, name, description, category, unit_of_measure,
	stock_quantity, reserved_quantity, minimum_stock, unit_price,
	expected_unit_weight, location, is_active, created_at, updated_at`

func (r *ProductRepository) scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.UnitOfMeasure,
		&p.StockQuantity, &p.ReservedQuantity, &p.MinimumStock, &p.UnitPrice,
		&p.ExpectedUnitWeight, &p.Location, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// Create inserta el producto.
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, name, description, category, unit_of_measure,
			stock_quantity, reserved_quantity, minimum_stock, unit_price,
			expected_unit_weight, location, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, p.Description, p.Category, p.UnitOfMeasure,
		p.StockQuantity, p.ReservedQuantity, p.MinimumStock, p.UnitPrice,
		p.ExpectedUnitWeight, p.Location, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err)
}

// GetByID obtiene el producto por su ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return r.scanProduct(row)
}

// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la
// transacción. Dos aprobaciones concurrentes sobre el mismo producto quedan
// serializadas aquí.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	return r.scanProduct(row)
}

// List devuelve productos filtrados con el total sin paginar.
func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OnlyActive {
		conds = append(conds, "is_active = TRUE")
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		conds = append(conds, "(name ILIKE "+ph+" OR description ILIKE "+ph+")")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
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

	var products []*entity.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, mapError(rows.Err())
}

// ListLowStock devuelve los productos activos con disponible <= mínimo.
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = TRUE
		  AND stock_quantity - reserved_quantity <= minimum_stock
		ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, mapError(rows.Err())
}

// Update persiste los campos editables del producto.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, unit_of_measure = $5,
			minimum_stock = $6, unit_price = $7, expected_unit_weight = $8,
			location = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Category, p.UnitOfMeasure,
		p.MinimumStock, p.UnitPrice, p.ExpectedUnitWeight, p.Location, p.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}

// UpdateStock sobrescribe las proyecciones cacheadas de saldo y reservado.
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock, reserved decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET stock_quantity = $2, reserved_quantity = $3, updated_at = now()
		WHERE id = $1`,
		id, stock, reserved,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}

// Deactivate marca el producto como inactivo sin borrarlo: su historial de
// movimientos y deudas sigue referenciándolo.
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}
