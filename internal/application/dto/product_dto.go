package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateProductRequest es el cuerpo de alta de producto.
type CreateProductRequest struct {
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Category           string           `json:"category"`
	UnitOfMeasure      string           `json:"unit_of_measure"`
	InitialStock       decimal.Decimal  `json:"initial_stock"`
	MinimumStock       decimal.Decimal  `json:"minimum_stock"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	ExpectedUnitWeight *decimal.Decimal `json:"expected_unit_weight,omitempty"`
	Location           string           `json:"location"`
}

// UpdateProductRequest es el cuerpo de edición de producto. Los campos nulos
// se dejan sin cambio.
type UpdateProductRequest struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Category           *string          `json:"category,omitempty"`
	UnitOfMeasure      *string          `json:"unit_of_measure,omitempty"`
	MinimumStock       *decimal.Decimal `json:"minimum_stock,omitempty"`
	UnitPrice          *decimal.Decimal `json:"unit_price,omitempty"`
	ExpectedUnitWeight *decimal.Decimal `json:"expected_unit_weight,omitempty"`
	Location           *string          `json:"location,omitempty"`
}

// StockAdjustmentRequest es el cuerpo de un movimiento manual de inventario.
type StockAdjustmentRequest struct {
	Type     string          `json:"type"` // in, out o adjustment
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes"`
}

// ProductResponse es la vista pública de un producto con sus proyecciones.
type ProductResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Category           string           `json:"category"`
	UnitOfMeasure      string           `json:"unit_of_measure"`
	StockQuantity      decimal.Decimal  `json:"stock_quantity"`
	ReservedQuantity   decimal.Decimal  `json:"reserved_quantity"`
	AvailableQuantity  decimal.Decimal  `json:"available_quantity"`
	MinimumStock       decimal.Decimal  `json:"minimum_stock"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	ExpectedUnitWeight *decimal.Decimal `json:"expected_unit_weight,omitempty"`
	Location           string           `json:"location"`
	StockStatus        string           `json:"stock_status"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ToProductResponse mapea la entidad a su vista pública.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Category:           p.Category,
		UnitOfMeasure:      p.UnitOfMeasure,
		StockQuantity:      p.StockQuantity,
		ReservedQuantity:   p.ReservedQuantity,
		AvailableQuantity:  p.Available(),
		MinimumStock:       p.MinimumStock,
		UnitPrice:          p.UnitPrice,
		ExpectedUnitWeight: p.ExpectedUnitWeight,
		Location:           p.Location,
		StockStatus:        p.StockStatus(),
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// TransactionResponse es la vista pública de un movimiento del libro.
type TransactionResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	PerformedBy   string          `json:"performed_by"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToTransactionResponse mapea el movimiento a su vista pública.
func ToTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		ProductID:     t.ProductID,
		Type:          t.Type,
		Quantity:      t.Quantity,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		PerformedBy:   t.PerformedBy,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}
