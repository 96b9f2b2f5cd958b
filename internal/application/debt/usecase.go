// Package debt implementa el libro de deudas: consulta, alta manual por
// operadores y resolución única (paid, waived o disputed).
package debt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

const roleUser = "user"

// UseCase expone las operaciones sobre deudas.
type UseCase struct {
	repos    ports.Repos
	tx       ports.TxRunner
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso de deudas.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{repos: repos, tx: tx, notifier: notifier, log: log}
}

// CreateManual registra una deuda creada por un operador, típicamente por
// daños detectados en la revisión de una devolución. El precio unitario se
// toma del catálogo en el momento del alta.
func (uc *UseCase) CreateManual(ctx context.Context, operatorID string, in dto.CreateDebtRequest) (*entity.Debt, error) {
	if in.UserID == "" || !entity.ValidDebtType(in.Type) || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var d *entity.Debt
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if in.RequestID != nil {
			if _, err := r.Requests.GetByID(ctx, *in.RequestID); err != nil {
				return err
			}
		}
		d = &entity.Debt{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			ProductID:   p.ID,
			RequestID:   in.RequestID,
			Type:        in.Type,
			Quantity:    in.Quantity,
			UnitPrice:   p.UnitPrice,
			TotalAmount: in.Quantity.Mul(p.UnitPrice),
			Status:      entity.DebtStatusPending,
			Description: in.Description,
			CreatedBy:   operatorID,
			DueDate:     in.DueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return r.Debts.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, entity.NewEvent(entity.EventDebtCreated, d.UserID, map[string]any{
		"debt_id":      d.ID,
		"user_id":      d.UserID,
		"product_id":   d.ProductID,
		"type":         d.Type,
		"total_amount": d.TotalAmount,
	}, now))
	uc.log.Info().Str("debt_id", d.ID).Str("operator_id", operatorID).Msg("deuda manual registrada")
	return d, nil
}

// Resolve aplica la resolución de una deuda pendiente. La doble resolución
// se rechaza con ErrAlreadyResolved incluso bajo concurrencia, gracias al
// bloqueo de fila dentro de la transacción.
func (uc *UseCase) Resolve(ctx context.Context, debtID, resolverID string, in dto.ResolveDebtRequest) (*entity.Debt, error) {
	var d *entity.Debt
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		d, err = r.Debts.GetForUpdate(ctx, debtID)
		if err != nil {
			return err
		}
		if err := d.Resolve(in.Resolution, resolverID, now); err != nil {
			return err
		}
		if in.Notes != "" {
			d.Description = d.Description + " | " + in.Notes
		}
		return r.Debts.Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, entity.NewEvent(entity.EventDebtResolved, d.UserID, map[string]any{
		"debt_id":    d.ID,
		"user_id":    d.UserID,
		"resolution": d.Status,
	}, now))
	uc.log.Info().Str("debt_id", d.ID).Str("resolution", d.Status).Msg("deuda resuelta")
	return d, nil
}

// Get devuelve la deuda. Un usuario solo ve las suyas.
func (uc *UseCase) Get(ctx context.Context, debtID, actorID, role string) (*entity.Debt, error) {
	d, err := uc.repos.Debts.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if role == roleUser && d.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

// List devuelve deudas paginadas. A un usuario se le fuerza el filtro por su
// propio ID.
func (uc *UseCase) List(ctx context.Context, actorID, role string, f repository.DebtFilter) ([]*entity.Debt, int, error) {
	if role == roleUser {
		f.UserID = actorID
	}
	return uc.repos.Debts.List(ctx, f)
}

// Statistics resume deudas por estado. Para un usuario, solo las suyas.
func (uc *UseCase) Statistics(ctx context.Context, actorID, role string) (*repository.DebtStatistics, error) {
	userID := ""
	if role == roleUser {
		userID = actorID
	}
	return uc.repos.Debts.Statistics(ctx, userID)
}
