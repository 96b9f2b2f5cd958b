package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateDebtRequest es el cuerpo de alta manual de deuda (daños u otros
// cargos que el motor de conciliación no genera solo).
type CreateDebtRequest struct {
	UserID      string          `json:"user_id"`
	ProductID   string          `json:"product_id"`
	RequestID   *string         `json:"request_id,omitempty"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// ResolveDebtRequest es el cuerpo de resolución de deuda.
type ResolveDebtRequest struct {
	Resolution string `json:"resolution"` // paid, waived o disputed
	Notes      string `json:"notes"`
}

// DebtResponse es la vista pública de una deuda.
type DebtResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	ProductID    string          `json:"product_id"`
	RequestID    *string         `json:"request_id,omitempty"`
	ItemID       *string         `json:"item_id,omitempty"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	Description  string          `json:"description,omitempty"`
	CreatedBy    string          `json:"created_by"`
	ResolvedBy   *string         `json:"resolved_by,omitempty"`
	ResolvedDate *time.Time      `json:"resolved_date,omitempty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToDebtResponse mapea la deuda a su vista pública.
func ToDebtResponse(d *entity.Debt) DebtResponse {
	return DebtResponse{
		ID:           d.ID,
		UserID:       d.UserID,
		ProductID:    d.ProductID,
		RequestID:    d.RequestID,
		ItemID:       d.ItemID,
		Type:         d.Type,
		Quantity:     d.Quantity,
		UnitPrice:    d.UnitPrice,
		TotalAmount:  d.TotalAmount,
		Status:       d.Status,
		Description:  d.Description,
		CreatedBy:    d.CreatedBy,
		ResolvedBy:   d.ResolvedBy,
		ResolvedDate: d.ResolvedDate,
		DueDate:      d.DueDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
