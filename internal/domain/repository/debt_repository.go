package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// DebtFilter acota los listados de deudas.
type DebtFilter struct {
	UserID    string
	Status    string
	Type      string
	RequestID string
	Limit     int
	Offset    int
}

// DebtStatistics resume deudas por estado con el monto pendiente acumulado.
type DebtStatistics struct {
	Total         int             `json:"total"`
	ByStatus      map[string]int  `json:"by_status"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// DebtRepository es el puerto de persistencia del libro de deudas.
// No hay borrado: una deuda condonada sigue existiendo con estado waived.
type DebtRepository interface {
	Create(ctx context.Context, d *entity.Debt) error
	GetByID(ctx context.Context, id string) (*entity.Debt, error)
	// GetForUpdate obtiene la deuda bloqueando la fila durante la
	// transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Debt, error)
	List(ctx context.Context, f DebtFilter) ([]*entity.Debt, int, error)
	Update(ctx context.Context, d *entity.Debt) error
	Statistics(ctx context.Context, userID string) (*DebtStatistics, error)
}
