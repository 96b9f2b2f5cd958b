package debt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
)

type fixture struct {
	store    *memory.Store
	repos    ports.Repos
	notifier *memory.Notifier
	uc       *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	notifier := memory.NewNotifier(zerolog.Nop())
	uc := NewUseCase(repos, store, notifier, zerolog.Nop())
	return &fixture{store: store, repos: repos, notifier: notifier, uc: uc}
}

func (f *fixture) seedProduct(t *testing.T, price int64) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID:        uuid.NewString(),
		Name:      "Martillo",
		UnitPrice: decimal.NewFromInt(price),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func TestCreateManual_TomaPrecioDelCatalogo(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 30000)
	ctx := context.Background()

	d, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
		UserID:      "user-1",
		ProductID:   p.ID,
		Type:        entity.DebtTypeDamaged,
		Quantity:    decimal.NewFromInt(2),
		Description: "mango partido en la devolución",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusPending, d.Status)
	assert.Nil(t, d.RequestID, "deuda manual sin solicitud asociada")
	assert.True(t, d.UnitPrice.Equal(decimal.NewFromInt(30000)))
	assert.True(t, d.TotalAmount.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, "op-1", d.CreatedBy)
	assert.Len(t, f.notifier.EventsOfKind(entity.EventDebtCreated), 1)
}

func TestCreateManual_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 30000)
	ctx := context.Background()

	casos := []dto.CreateDebtRequest{
		{UserID: "", ProductID: p.ID, Type: entity.DebtTypeDamaged, Quantity: decimal.NewFromInt(1)},
		{UserID: "user-1", ProductID: p.ID, Type: "perdida", Quantity: decimal.NewFromInt(1)},
		{UserID: "user-1", ProductID: p.ID, Type: entity.DebtTypeDamaged, Quantity: decimal.Zero},
	}
	for _, in := range casos {
		_, err := f.uc.CreateManual(ctx, "op-1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo=%s", in.Type)
	}

	// Producto inexistente.
	_, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
		UserID: "user-1", ProductID: uuid.NewString(),
		Type: entity.DebtTypeDamaged, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_UnaSolaVez(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 30000)
	ctx := context.Background()

	d, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
		UserID: "user-1", ProductID: p.ID,
		Type: entity.DebtTypeMissing, Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	resolved, err := f.uc.Resolve(ctx, d.ID, "admin-1", dto.ResolveDebtRequest{Resolution: entity.DebtStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusPaid, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "admin-1", *resolved.ResolvedBy)
	assert.Len(t, f.notifier.EventsOfKind(entity.EventDebtResolved), 1)

	// La segunda resolución se rechaza y no altera la primera.
	_, err = f.uc.Resolve(ctx, d.ID, "admin-2", dto.ResolveDebtRequest{Resolution: entity.DebtStatusWaived})
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	stored, err := f.repos.Debts.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusPaid, stored.Status)
}

func TestResolve_Concurrente(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 30000)
	ctx := context.Background()

	d, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
		UserID: "user-1", ProductID: p.ID,
		Type: entity.DebtTypeMissing, Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	// Dos resoluciones simultáneas: exactamente una gana.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	resolutions := []string{entity.DebtStatusPaid, entity.DebtStatusWaived}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Resolve(ctx, d.ID, "admin", dto.ResolveDebtRequest{Resolution: resolutions[i]})
		}(i)
	}
	wg.Wait()

	fallos := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
			fallos++
		}
	}
	assert.Equal(t, 1, fallos)
}

func TestResolve_ResolucionDesconocida(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 30000)
	ctx := context.Background()

	d, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
		UserID: "user-1", ProductID: p.ID,
		Type: entity.DebtTypeMissing, Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	_, err = f.uc.Resolve(ctx, d.ID, "admin-1", dto.ResolveDebtRequest{Resolution: "cerrada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// pending no es una resolución.
	_, err = f.uc.Resolve(ctx, d.ID, "admin-1", dto.ResolveDebtRequest{Resolution: entity.DebtStatusPending})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListYStatistics_AislamientoPorUsuario(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 10000)
	ctx := context.Background()

	mk := func(userID string) *entity.Debt {
		d, err := f.uc.CreateManual(ctx, "op-1", dto.CreateDebtRequest{
			UserID: userID, ProductID: p.ID,
			Type: entity.DebtTypeMissing, Quantity: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		return d
	}
	d1 := mk("user-1")
	mk("user-2")
	mk("user-2")

	// user-1 solo ve la suya aunque pida otras.
	list, total, err := f.uc.List(ctx, "user-1", "user", repository.DebtFilter{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, d1.ID, list[0].ID)

	// user-1 no puede ver una deuda ajena por ID.
	_, err = f.uc.Get(ctx, list[0].ID, "user-2", "user")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// El operador ve todo, con el monto pendiente acumulado.
	stats, err := f.uc.Statistics(ctx, "op-1", "operator")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[entity.DebtStatusPending])
	assert.True(t, stats.PendingAmount.Equal(decimal.NewFromInt(30000)))
}
