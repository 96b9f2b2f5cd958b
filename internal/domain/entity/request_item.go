package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// Etapas de la cadena de cantidades de un ítem.
const (
	StageRequested = "requested"
	StageApproved  = "approved"
	StageDelivered = "delivered"
	StageReturned  = "returned"
)

// RequestItem es una línea de solicitud sobre un producto. La cadena de
// cantidades requested -> approved -> delivered -> returned avanza por etapas:
// cada campo se escribe una sola vez al avanzar y es inmutable después.
// Solo el campo de la etapa siguiente admite escritura, y únicamente mientras
// la solicitud padre está en el estado correspondiente.
type RequestItem struct {
	ID              string
	RequestID       string
	ProductID       string
	Stage           string
	RequestedQty    decimal.Decimal
	ApprovedQty     decimal.Decimal
	DeliveredQty    decimal.Decimal
	DeliveredWeight *decimal.Decimal
	ReturnedQty     decimal.Decimal
	ReturnedWeight  *decimal.Decimal
	ReviewFlag      bool // desviación de peso pendiente de revisión por el operador
	CreatedAt       time.Time
}

// NewRequestItem crea un ítem en etapa requested.
func NewRequestItem(id, requestID, productID string, requestedQty decimal.Decimal, now time.Time) (*RequestItem, error) {
	if !requestedQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	return &RequestItem{
		ID:           id,
		RequestID:    requestID,
		ProductID:    productID,
		Stage:        StageRequested,
		RequestedQty: requestedQty,
		CreatedAt:    now,
	}, nil
}

// Approve fija la cantidad aprobada (0 <= qty <= requested) y avanza la etapa.
func (i *RequestItem) Approve(qty decimal.Decimal) error {
	if i.Stage != StageRequested {
		return domain.ErrInvalidTransition
	}
	if qty.IsNegative() || qty.GreaterThan(i.RequestedQty) {
		return domain.ErrInvalidInput
	}
	i.ApprovedQty = qty
	i.Stage = StageApproved
	return nil
}

// Deliver fija la cantidad entregada (0 <= qty <= approved) con su peso medido
// opcional y avanza la etapa.
func (i *RequestItem) Deliver(qty decimal.Decimal, weight *decimal.Decimal) error {
	if i.Stage != StageApproved {
		return domain.ErrInvalidTransition
	}
	if qty.IsNegative() || qty.GreaterThan(i.ApprovedQty) {
		return domain.ErrInvalidInput
	}
	if weight != nil && weight.IsNegative() {
		return domain.ErrInvalidInput
	}
	i.DeliveredQty = qty
	i.DeliveredWeight = weight
	i.Stage = StageDelivered
	return nil
}

// Return fija la cantidad devuelta (0 <= qty <= delivered) con su peso medido
// opcional y avanza la etapa.
func (i *RequestItem) Return(qty decimal.Decimal, weight *decimal.Decimal) error {
	if i.Stage != StageDelivered {
		return domain.ErrInvalidTransition
	}
	if qty.IsNegative() || qty.GreaterThan(i.DeliveredQty) {
		return domain.ErrInvalidInput
	}
	if weight != nil && weight.IsNegative() {
		return domain.ErrInvalidInput
	}
	i.ReturnedQty = qty
	i.ReturnedWeight = weight
	i.Stage = StageReturned
	return nil
}
