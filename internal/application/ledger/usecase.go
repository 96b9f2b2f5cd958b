// Package ledger implementa el libro de movimientos de inventario: registro
// de entradas, salidas, ajustes y devoluciones, y el apartado de stock entre
// aprobación y entrega (reserve/release).
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// UseCase expone las operaciones del libro de inventario.
type UseCase struct {
	repos    ports.Repos
	tx       ports.TxRunner
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso del libro.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{repos: repos, tx: tx, notifier: notifier, log: log}
}

// ApplyInput describe un movimiento a registrar en el libro.
type ApplyInput struct {
	ProductID     string
	Type          string // in, out, adjustment o return
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	PerformedBy   string
	Notes         string
}

func (in ApplyInput) validate() error {
	switch in.Type {
	case entity.TransactionTypeIn, entity.TransactionTypeOut, entity.TransactionTypeReturn:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.TransactionTypeAdjustment:
		if in.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyTx registra un movimiento físico dentro de la transacción en curso y
// devuelve los eventos a publicar tras el commit. El saldo resultante nunca
// puede quedar negativo ni por debajo de lo reservado.
func (uc *UseCase) ApplyTx(ctx context.Context, r ports.Repos, in ApplyInput, now time.Time) (*entity.InventoryTransaction, []entity.Event, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	p, err := r.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}

	tx := &entity.InventoryTransaction{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		PerformedBy:   in.PerformedBy,
		Notes:         in.Notes,
		CreatedAt:     now,
	}

	newStock := p.StockQuantity.Add(tx.BalanceDelta())
	if newStock.IsNegative() || newStock.LessThan(p.ReservedQuantity) {
		return nil, nil, domain.ErrInsufficientStock
	}

	if err := r.Transactions.Create(ctx, tx); err != nil {
		return nil, nil, err
	}
	if err := r.Products.UpdateStock(ctx, p.ID, newStock, p.ReservedQuantity); err != nil {
		return nil, nil, err
	}

	events := lowStockEvents(p, newStock, p.ReservedQuantity, now)
	return tx, events, nil
}

// ReserveTx aparta qty unidades del disponible dentro de la transacción en
// curso. Falla con ErrInsufficientStock si el disponible no alcanza.
func (uc *UseCase) ReserveTx(ctx context.Context, r ports.Repos, productID string, qty decimal.Decimal, refID, performedBy string, now time.Time) ([]entity.Event, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	p, err := r.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Available().LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}

	tx := &entity.InventoryTransaction{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		Type:          entity.TransactionTypeReserve,
		Quantity:      qty,
		ReferenceType: entity.ReferenceRequest,
		ReferenceID:   refID,
		PerformedBy:   performedBy,
		CreatedAt:     now,
	}
	if err := r.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	newReserved := p.ReservedQuantity.Add(qty)
	if err := r.Products.UpdateStock(ctx, p.ID, p.StockQuantity, newReserved); err != nil {
		return nil, err
	}
	return lowStockEvents(p, p.StockQuantity, newReserved, now), nil
}

// ReleaseTx libera qty unidades reservadas dentro de la transacción en curso.
// Liberar más de lo reservado es un error de programación, no de usuario.
func (uc *UseCase) ReleaseTx(ctx context.Context, r ports.Repos, productID string, qty decimal.Decimal, refID, performedBy string, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}

	p, err := r.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	newReserved := p.ReservedQuantity.Sub(qty)
	if newReserved.IsNegative() {
		return domain.ErrInvalidInput
	}

	tx := &entity.InventoryTransaction{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		Type:          entity.TransactionTypeRelease,
		Quantity:      qty,
		ReferenceType: entity.ReferenceRequest,
		ReferenceID:   refID,
		PerformedBy:   performedBy,
		CreatedAt:     now,
	}
	if err := r.Transactions.Create(ctx, tx); err != nil {
		return err
	}
	return r.Products.UpdateStock(ctx, p.ID, p.StockQuantity, newReserved)
}

// Apply registra un movimiento manual en su propia transacción y publica los
// eventos resultantes tras el commit.
func (uc *UseCase) Apply(ctx context.Context, in ApplyInput) (*entity.InventoryTransaction, error) {
	var (
		tx     *entity.InventoryTransaction
		events []entity.Event
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		tx, events, err = uc.ApplyTx(ctx, r, in, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, events)
	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("type", in.Type).
		Str("quantity", in.Quantity.String()).
		Msg("movimiento de inventario registrado")
	return tx, nil
}

// Balance devuelve las proyecciones del producto recalculadas desde el libro.
func (uc *UseCase) Balance(ctx context.Context, productID string) (stock, reserved decimal.Decimal, err error) {
	if _, err = uc.repos.Products.GetByID(ctx, productID); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return uc.repos.Transactions.SumBalances(ctx, productID)
}

// History devuelve el historial de movimientos de un producto.
func (uc *UseCase) History(ctx context.Context, productID string, f repository.TransactionFilter) ([]*entity.InventoryTransaction, int, error) {
	if _, err := uc.repos.Products.GetByID(ctx, productID); err != nil {
		return nil, 0, err
	}
	return uc.repos.Transactions.ListByProduct(ctx, productID, f)
}

func (uc *UseCase) publish(ctx context.Context, events []entity.Event) {
	for _, ev := range events {
		uc.notifier.Publish(ctx, ev)
	}
}

// lowStockEvents emite la alerta de stock bajo solo al cruzar el umbral, no
// en cada movimiento mientras se permanece por debajo.
func lowStockEvents(before *entity.Product, newStock, newReserved decimal.Decimal, now time.Time) []entity.Event {
	oldAvailable := before.Available()
	newAvailable := newStock.Sub(newReserved)
	if newAvailable.LessThanOrEqual(before.MinimumStock) && oldAvailable.GreaterThan(before.MinimumStock) {
		return []entity.Event{entity.NewEvent(entity.EventLowStock, before.ID, map[string]any{
			"product_id":    before.ID,
			"product_name":  before.Name,
			"available":     newAvailable,
			"minimum_stock": before.MinimumStock,
		}, now)}
	}
	return nil
}
