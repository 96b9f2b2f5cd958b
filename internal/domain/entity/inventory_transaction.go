package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
// in/out/adjustment/return afectan el saldo físico; reserve/release afectan
// solo la proyección de reservado (apartado entre aprobación y entrega).
const (
	TransactionTypeIn         = "in"
	TransactionTypeOut        = "out"
	TransactionTypeAdjustment = "adjustment"
	TransactionTypeReturn     = "return"
	TransactionTypeReserve    = "reserve"
	TransactionTypeRelease    = "release"
)

// Origen del movimiento (qué lo causó).
const (
	ReferenceRequest = "request"
	ReferenceDebt    = "debt"
	ReferenceManual  = "manual"
)

// InventoryTransaction es un registro inmutable del libro de movimientos.
// El saldo físico de un producto equivale a la suma de los deltas de sus
// movimientos; el campo cacheado en products es recomputable desde aquí.
type InventoryTransaction struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal // magnitud positiva, salvo adjustment que lleva signo
	ReferenceType string
	ReferenceID   string
	PerformedBy   string
	Notes         string
	CreatedAt     time.Time
}

// BalanceDelta devuelve el efecto del movimiento sobre el saldo físico.
func (t *InventoryTransaction) BalanceDelta() decimal.Decimal {
	switch t.Type {
	case TransactionTypeIn, TransactionTypeReturn:
		return t.Quantity
	case TransactionTypeOut:
		return t.Quantity.Neg()
	case TransactionTypeAdjustment:
		return t.Quantity
	default:
		return decimal.Zero
	}
}

// ReservedDelta devuelve el efecto del movimiento sobre la cantidad reservada.
func (t *InventoryTransaction) ReservedDelta() decimal.Decimal {
	switch t.Type {
	case TransactionTypeReserve:
		return t.Quantity
	case TransactionTypeRelease:
		return t.Quantity.Neg()
	default:
		return decimal.Zero
	}
}
