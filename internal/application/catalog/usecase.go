// Package catalog implementa el mantenimiento del catálogo de productos.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// UseCase expone las operaciones de catálogo.
type UseCase struct {
	repos  ports.Repos
	tx     ports.TxRunner
	ledger *ledger.UseCase
	log    zerolog.Logger
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, lg *ledger.UseCase, log zerolog.Logger) *UseCase {
	return &UseCase{repos: repos, tx: tx, ledger: lg, log: log}
}

// Create da de alta el producto. El stock inicial no se escribe directo:
// entra como movimiento 'in' para que el libro siga siendo la fuente de
// verdad desde el primer día.
func (uc *UseCase) Create(ctx context.Context, operatorID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if in.Name == "" || in.UnitPrice.IsNegative() || in.InitialStock.IsNegative() || in.MinimumStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	p := &entity.Product{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Description:        in.Description,
		Category:           in.Category,
		UnitOfMeasure:      in.UnitOfMeasure,
		StockQuantity:      decimal.Zero,
		ReservedQuantity:   decimal.Zero,
		MinimumStock:       in.MinimumStock,
		UnitPrice:          in.UnitPrice,
		ExpectedUnitWeight: in.ExpectedUnitWeight,
		Location:           in.Location,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			return err
		}
		if in.InitialStock.GreaterThan(decimal.Zero) {
			_, _, err := uc.ledger.ApplyTx(ctx, r, ledger.ApplyInput{
				ProductID:     p.ID,
				Type:          entity.TransactionTypeIn,
				Quantity:      in.InitialStock,
				ReferenceType: entity.ReferenceManual,
				PerformedBy:   operatorID,
				Notes:         "stock inicial",
			}, now)
			if err != nil {
				return err
			}
			p.StockQuantity = in.InitialStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("producto creado")
	return p, nil
}

// Update edita los campos de catálogo del producto. Los campos nulos del
// cuerpo quedan sin cambio.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	var p *entity.Product
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.UnitOfMeasure != nil {
			p.UnitOfMeasure = *in.UnitOfMeasure
		}
		if in.MinimumStock != nil {
			if in.MinimumStock.IsNegative() {
				return domain.ErrInvalidInput
			}
			p.MinimumStock = *in.MinimumStock
		}
		if in.UnitPrice != nil {
			if in.UnitPrice.IsNegative() {
				return domain.ErrInvalidInput
			}
			p.UnitPrice = *in.UnitPrice
		}
		if in.ExpectedUnitWeight != nil {
			p.ExpectedUnitWeight = in.ExpectedUnitWeight
		}
		if in.Location != nil {
			p.Location = *in.Location
		}
		p.UpdatedAt = time.Now().UTC()
		return r.Products.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get devuelve el producto por su ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Product, error) {
	return uc.repos.Products.GetByID(ctx, id)
}

// List devuelve el catálogo filtrado y paginado.
func (uc *UseCase) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	return uc.repos.Products.List(ctx, f)
}

// LowStock devuelve los productos activos con disponible <= mínimo.
func (uc *UseCase) LowStock(ctx context.Context) ([]*entity.Product, error) {
	return uc.repos.Products.ListLowStock(ctx)
}

// Deactivate retira el producto del catálogo sin borrarlo.
func (uc *UseCase) Deactivate(ctx context.Context, id string) error {
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		return r.Products.Deactivate(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto desactivado")
	return nil
}
