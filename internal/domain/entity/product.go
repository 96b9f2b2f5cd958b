package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados del nivel actual.
const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"
)

// Product representa un material del almacén.
// StockQuantity y ReservedQuantity son proyecciones cacheadas del libro de
// movimientos (inventory_transactions); se actualizan solo dentro de la misma
// transacción que agrega el movimiento, nunca directamente.
type Product struct {
	ID                 string
	Name               string
	Description        string
	Category           string
	UnitOfMeasure      string
	StockQuantity      decimal.Decimal
	ReservedQuantity   decimal.Decimal
	MinimumStock       decimal.Decimal
	UnitPrice          decimal.Decimal
	ExpectedUnitWeight *decimal.Decimal // peso esperado por unidad (kg); nil = sin control de peso
	Location           string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Available devuelve el stock disponible para nuevas reservas.
func (p *Product) Available() decimal.Decimal {
	return p.StockQuantity.Sub(p.ReservedQuantity)
}

// StockStatus clasifica el nivel de stock actual.
func (p *Product) StockStatus() string {
	if p.StockQuantity.LessThanOrEqual(decimal.Zero) {
		return StockStatusOut
	}
	if p.StockQuantity.LessThanOrEqual(p.MinimumStock) {
		return StockStatusLow
	}
	return StockStatusIn
}
