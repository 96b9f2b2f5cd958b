package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateRequestItem es una línea del cuerpo de creación de solicitud.
type CreateRequestItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateRequestRequest es el cuerpo de creación de solicitud.
type CreateRequestRequest struct {
	RequestedDate         string              `json:"requested_date"` // YYYY-MM-DD
	RequestedTime         string              `json:"requested_time"` // HH:MM
	EstimatedUsagePeriod  string              `json:"estimated_usage_period"`
	SupervisingInstructor string              `json:"supervising_instructor"`
	Purpose               string              `json:"purpose"`
	Notes                 string              `json:"notes"`
	Items                 []CreateRequestItem `json:"items"`
}

// ApproveItem fija la cantidad aprobada de un ítem.
type ApproveItem struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ApproveRequestRequest es el cuerpo de aprobación. Un ítem omitido se
// aprueba por su cantidad solicitada completa.
type ApproveRequestRequest struct {
	Items []ApproveItem `json:"items"`
	Notes string        `json:"notes"`
}

// DeliveryItem fija cantidad entregada y peso medido de un ítem.
type DeliveryItem struct {
	ItemID   string           `json:"item_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
}

// RecordDeliveryRequest es el cuerpo de registro de entrega.
type RecordDeliveryRequest struct {
	Items []DeliveryItem `json:"items"`
	Notes string         `json:"notes"`
}

// ReturnItem fija cantidad devuelta y peso medido de un ítem.
type ReturnItem struct {
	ItemID   string           `json:"item_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
}

// RecordReturnRequest es el cuerpo de registro de devolución.
type RecordReturnRequest struct {
	Items []ReturnItem `json:"items"`
	Notes string       `json:"notes"`
}

// CancelRequestRequest es el cuerpo de cancelación.
type CancelRequestRequest struct {
	Reason string `json:"reason"`
}

// RequestItemResponse es la vista pública de un ítem con su cadena de
// cantidades por etapa.
type RequestItemResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name,omitempty"`
	Stage           string           `json:"stage"`
	RequestedQty    decimal.Decimal  `json:"requested_qty"`
	ApprovedQty     decimal.Decimal  `json:"approved_qty"`
	DeliveredQty    decimal.Decimal  `json:"delivered_qty"`
	DeliveredWeight *decimal.Decimal `json:"delivered_weight,omitempty"`
	ReturnedQty     decimal.Decimal  `json:"returned_qty"`
	ReturnedWeight  *decimal.Decimal `json:"returned_weight,omitempty"`
	ReviewFlag      bool             `json:"review_flag"`
}

// RequestResponse es la vista pública de una solicitud.
type RequestResponse struct {
	ID                    string                `json:"id"`
	RequestNumber         string                `json:"request_number"`
	UserID                string                `json:"user_id"`
	Status                string                `json:"status"`
	RequestedDate         time.Time             `json:"requested_date"`
	RequestedTime         string                `json:"requested_time,omitempty"`
	EstimatedUsagePeriod  string                `json:"estimated_usage_period,omitempty"`
	SupervisingInstructor string                `json:"supervising_instructor,omitempty"`
	Purpose               string                `json:"purpose,omitempty"`
	CollectionDate        *time.Time            `json:"collection_date,omitempty"`
	DeliveryDate          *time.Time            `json:"delivery_date,omitempty"`
	ReturnDate            *time.Time            `json:"return_date,omitempty"`
	Notes                 string                `json:"notes,omitempty"`
	Items                 []RequestItemResponse `json:"items"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// ToRequestResponse mapea la solicitud a su vista pública. El mapa de
// productos es opcional y solo enriquece los nombres.
func ToRequestResponse(r *entity.Request, products map[string]*entity.Product) RequestResponse {
	items := make([]RequestItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		resp := RequestItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Stage:           it.Stage,
			RequestedQty:    it.RequestedQty,
			ApprovedQty:     it.ApprovedQty,
			DeliveredQty:    it.DeliveredQty,
			DeliveredWeight: it.DeliveredWeight,
			ReturnedQty:     it.ReturnedQty,
			ReturnedWeight:  it.ReturnedWeight,
			ReviewFlag:      it.ReviewFlag,
		}
		if p, ok := products[it.ProductID]; ok {
			resp.ProductName = p.Name
		}
		items = append(items, resp)
	}
	return RequestResponse{
		ID:                    r.ID,
		RequestNumber:         r.RequestNumber,
		UserID:                r.UserID,
		Status:                r.Status,
		RequestedDate:         r.RequestedDate,
		RequestedTime:         r.RequestedTime,
		EstimatedUsagePeriod:  r.EstimatedUsagePeriod,
		SupervisingInstructor: r.SupervisingInstructor,
		Purpose:               r.Purpose,
		CollectionDate:        r.CollectionDate,
		DeliveryDate:          r.DeliveryDate,
		ReturnDate:            r.ReturnDate,
		Notes:                 r.Notes,
		Items:                 items,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

// AvailabilityItem reporta la disponibilidad de un producto solicitado.
type AvailabilityItem struct {
	ProductID string          `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
	Fulfills  bool            `json:"fulfills"`
}

// AvailabilityResponse es la respuesta de verificación previa de stock.
type AvailabilityResponse struct {
	Fulfillable bool               `json:"fulfillable"`
	Items       []AvailabilityItem `json:"items"`
}
