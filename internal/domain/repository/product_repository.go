package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ProductFilter acota los listados de catálogo.
type ProductFilter struct {
	Category   string
	Search     string // coincide contra nombre y descripción
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository es el puerto de persistencia del catálogo de productos.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando la fila durante la
	// transacción en curso (SELECT ... FOR UPDATE en Postgres).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	// ListLowStock devuelve los productos activos con disponible <= mínimo.
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	// UpdateStock sobrescribe los campos cacheados de saldo y reservado.
	UpdateStock(ctx context.Context, id string, stock, reserved decimal.Decimal) error
	Deactivate(ctx context.Context, id string) error
}
