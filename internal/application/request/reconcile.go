package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Reconciler compara lo acordado contra lo realmente entregado o devuelto y
// materializa las diferencias: faltantes como deudas y desviaciones de peso
// como marcas de revisión.
type Reconciler struct {
	// GraceDays es el plazo de pago de una deuda por faltante.
	GraceDays int
	// WeightTolerancePct es la desviación porcentual de peso admitida antes
	// de marcar el ítem para revisión.
	WeightTolerancePct decimal.Decimal
}

// NewReconciler construye el conciliador con su configuración.
func NewReconciler(graceDays int, tolerancePct float64) *Reconciler {
	return &Reconciler{
		GraceDays:          graceDays,
		WeightTolerancePct: decimal.NewFromFloat(tolerancePct),
	}
}

// shortfallDebt crea la deuda por faltante de qty unidades al precio vigente
// del producto. Cada etapa concilia solo su propio tramo (aprobado-entregado
// en la entrega, entregado-devuelto en la devolución), de modo que la suma de
// deudas de un ítem nunca excede lo solicitado por su precio.
func (rc *Reconciler) shortfallDebt(req *entity.Request, item *entity.RequestItem, p *entity.Product, qty decimal.Decimal, stage string, now time.Time) *entity.Debt {
	due := now.AddDate(0, 0, rc.GraceDays)
	return &entity.Debt{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		ProductID:   p.ID,
		RequestID:   &req.ID,
		ItemID:      &item.ID,
		Type:        entity.DebtTypeMissing,
		Quantity:    qty,
		UnitPrice:   p.UnitPrice,
		TotalAmount: qty.Mul(p.UnitPrice),
		Status:      entity.DebtStatusPending,
		Description: "faltante detectado en " + stage + " de la solicitud " + req.RequestNumber,
		CreatedBy:   "system",
		DueDate:     &due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ReconcileDelivery concilia un ítem al registrar su entrega: el tramo
// aprobado-entregado genera deuda por faltante y el peso medido se contrasta
// contra el esperado.
func (rc *Reconciler) ReconcileDelivery(req *entity.Request, item *entity.RequestItem, p *entity.Product, now time.Time) (*entity.Debt, []entity.Event) {
	var (
		debt   *entity.Debt
		events []entity.Event
	)

	if shortfall := item.ApprovedQty.Sub(item.DeliveredQty); shortfall.GreaterThan(decimal.Zero) {
		debt = rc.shortfallDebt(req, item, p, shortfall, "entrega", now)
	}
	if ev := rc.checkWeight(req, item, p, item.DeliveredQty, item.DeliveredWeight, now); ev != nil {
		item.ReviewFlag = true
		events = append(events, *ev)
	}
	return debt, events
}

// ReconcileReturn concilia un ítem al registrar su devolución: el tramo
// entregado-devuelto genera deuda por faltante y el peso devuelto se
// contrasta contra el esperado.
func (rc *Reconciler) ReconcileReturn(req *entity.Request, item *entity.RequestItem, p *entity.Product, now time.Time) (*entity.Debt, []entity.Event) {
	var (
		debt   *entity.Debt
		events []entity.Event
	)

	if shortfall := item.DeliveredQty.Sub(item.ReturnedQty); shortfall.GreaterThan(decimal.Zero) {
		debt = rc.shortfallDebt(req, item, p, shortfall, "devolución", now)
	}
	if ev := rc.checkWeight(req, item, p, item.ReturnedQty, item.ReturnedWeight, now); ev != nil {
		item.ReviewFlag = true
		events = append(events, *ev)
	}
	return debt, events
}

// checkWeight contrasta el peso medido contra qty por el peso unitario
// esperado. Sin peso esperado o sin medición no hay nada que contrastar.
// Una desviación solo marca para revisión: la deuda por peso la decide un
// operador humano, nunca el motor.
func (rc *Reconciler) checkWeight(req *entity.Request, item *entity.RequestItem, p *entity.Product, qty decimal.Decimal, measured *decimal.Decimal, now time.Time) *entity.Event {
	if p.ExpectedUnitWeight == nil || measured == nil || !qty.GreaterThan(decimal.Zero) {
		return nil
	}
	expected := p.ExpectedUnitWeight.Mul(qty)
	if !expected.GreaterThan(decimal.Zero) {
		return nil
	}

	deviationPct := measured.Sub(expected).Abs().Div(expected).Mul(decimal.NewFromInt(100))
	if deviationPct.LessThanOrEqual(rc.WeightTolerancePct) {
		return nil
	}

	ev := entity.NewEvent(entity.EventWeightDeviation, req.ID, map[string]any{
		"request_id":      req.ID,
		"request_number":  req.RequestNumber,
		"item_id":         item.ID,
		"product_id":      p.ID,
		"expected_weight": expected,
		"measured_weight": *measured,
		"deviation_pct":   deviationPct,
	}, now)
	return &ev
}
