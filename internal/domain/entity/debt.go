package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// Tipos de deuda.
const (
	DebtTypeMissing = "missing"
	DebtTypeDamaged = "damaged"
	DebtTypeOverdue = "overdue"
)

// Estados de deuda. pending es el único estado inicial; la resolución es un
// cambio único de pending a paid, waived o disputed.
const (
	DebtStatusPending  = "pending"
	DebtStatusPaid     = "paid"
	DebtStatusWaived   = "waived"
	DebtStatusDisputed = "disputed"
)

// ValidDebtType indica si el tipo de deuda es conocido.
func ValidDebtType(t string) bool {
	return t == DebtTypeMissing || t == DebtTypeDamaged || t == DebtTypeOverdue
}

// ValidResolution indica si el estado es una resolución aceptable.
func ValidResolution(status string) bool {
	return status == DebtStatusPaid || status == DebtStatusWaived || status == DebtStatusDisputed
}

// Debt es una obligación monetaria derivada de la conciliación de una entrega
// o devolución, o creada manualmente por un operador (RequestID nulo).
// Nunca se elimina; waived es una transición de estado, no un borrado.
type Debt struct {
	ID           string
	UserID       string
	ProductID    string
	RequestID    *string // nil = deuda independiente de solicitud
	ItemID       *string
	Type         string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TotalAmount  decimal.Decimal // Quantity × UnitPrice
	Status       string
	Description  string
	CreatedBy    string
	ResolvedBy   *string
	ResolvedDate *time.Time
	DueDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resolve aplica la resolución (paid, waived o disputed). Resolver una deuda
// ya resuelta es un error, no un no-op, para detectar dobles resoluciones.
func (d *Debt) Resolve(resolution, resolverID string, at time.Time) error {
	if !ValidResolution(resolution) {
		return domain.ErrInvalidInput
	}
	if d.Status != DebtStatusPending {
		return domain.ErrAlreadyResolved
	}
	d.Status = resolution
	d.ResolvedBy = &resolverID
	d.ResolvedDate = &at
	d.UpdatedAt = at
	return nil
}
