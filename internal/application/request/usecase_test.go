package request

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
)

type fakeNoteGen struct{}

func (fakeNoteGen) Generate(context.Context, *entity.Request, map[string]*entity.Product) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

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
	ledgerUC := ledger.NewUseCase(repos, store, notifier, zerolog.Nop())
	rc := NewReconciler(15, 5.0)
	uc := NewUseCase(repos, store, ledgerUC, rc, notifier, fakeNoteGen{}, zerolog.Nop())
	return &fixture{store: store, repos: repos, notifier: notifier, uc: uc}
}

func (f *fixture) seedProduct(t *testing.T, name string, stock int64, price int64, unitWeight *decimal.Decimal) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID:                 uuid.NewString(),
		Name:               name,
		UnitOfMeasure:      "unidad",
		StockQuantity:      decimal.NewFromInt(stock),
		UnitPrice:          decimal.NewFromInt(price),
		ExpectedUnitWeight: unitWeight,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) submit(t *testing.T, userID string, items ...dto.CreateRequestItem) *entity.Request {
	t.Helper()
	req, err := f.uc.Submit(context.Background(), userID, dto.CreateRequestRequest{
		RequestedDate: time.Now().Format("2006-01-02"),
		RequestedTime: "08:30",
		Purpose:       "práctica de taller",
		Items:         items,
	})
	require.NoError(t, err)
	return req
}

func item(productID string, qty int64) dto.CreateRequestItem {
	return dto.CreateRequestItem{ProductID: productID, Quantity: decimal.NewFromInt(qty)}
}

func TestSubmit_CreaSolicitudPendienteSinTocarInventario(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 3))
	assert.Equal(t, entity.RequestStatusPending, req.Status)
	assert.Regexp(t, regexp.MustCompile(`^REQ-\d{8}-\d{4}$`), req.RequestNumber)
	require.Len(t, req.Items, 1)
	assert.Equal(t, entity.StageRequested, req.Items[0].Stage)

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.IsZero(), "crear no aparta stock")

	assert.Len(t, f.notifier.EventsOfKind(entity.EventRequestCreated), 1)
}

func TestSubmit_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	// Sin ítems.
	_, err := f.uc.Submit(ctx, "user-1", dto.CreateRequestRequest{
		RequestedDate: "2026-08-29",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Fecha inválida.
	_, err = f.uc.Submit(ctx, "user-1", dto.CreateRequestRequest{
		RequestedDate: "29/08/2026",
		Items:         []dto.CreateRequestItem{item(p.ID, 1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Producto inexistente.
	_, err = f.uc.Submit(ctx, "user-1", dto.CreateRequestRequest{
		RequestedDate: "2026-08-29",
		Items:         []dto.CreateRequestItem{item(uuid.NewString(), 1)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Producto inactivo.
	require.NoError(t, f.repos.Products.Deactivate(ctx, p.ID))
	_, err = f.uc.Submit(ctx, "user-1", dto.CreateRequestRequest{
		RequestedDate: "2026-08-29",
		Items:         []dto.CreateRequestItem{item(p.ID, 1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApprove_ApartaStock(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 4))
	approved, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, approved.Status)

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(10)), "aprobar no toca el saldo físico")
	assert.True(t, got.ReservedQuantity.Equal(decimal.NewFromInt(4)))

	// Sin override, se aprueba lo solicitado completo.
	stored, err := f.repos.Requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].ApprovedQty.Equal(decimal.NewFromInt(4)))
}

func TestApprove_InsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	p1 := f.seedProduct(t, "Taladro", 10, 80000, nil)
	p2 := f.seedProduct(t, "Lija", 2, 1500, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p1.ID, 4), item(p2.ID, 5))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada quedó apartado, ni siquiera el primer ítem que sí alcanzaba.
	got1, err := f.repos.Products.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.True(t, got1.ReservedQuantity.IsZero(), "la aprobación fallida debe revertirse completa")

	stored, err := f.repos.Requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusPending, stored.Status)
	assert.Equal(t, entity.StageRequested, stored.Items[0].Stage)
}

func TestApprove_TransicionInvalida(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 2))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)

	// Doble aprobación.
	_, err = f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Entregar sin pasar por recolección.
	_, err = f.uc.RecordReturn(ctx, req.ID, "op-1", dto.RecordReturnRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCicloCompleto_EntregaParcialGeneraDeuda(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Cemento", 20, 25000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 10))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)

	// Se aprueban 10 pero solo se entregan 8: faltante de 2.
	itemID := req.Items[0].ID
	delivered, err := f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{
		Items: []dto.DeliveryItem{{ItemID: itemID, Quantity: decimal.NewFromInt(8)}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveryDate)

	// Apartado liberado completo; al saldo solo salieron las 8 entregadas.
	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.IsZero())
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(12)))

	// Deuda por el faltante de entrega: 2 × 25000.
	debts, _, err := f.repos.Debts.List(ctx, repository.DebtFilter{RequestID: req.ID})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, entity.DebtTypeMissing, debts[0].Type)
	assert.True(t, debts[0].TotalAmount.Equal(decimal.NewFromInt(50000)))
	require.NotNil(t, debts[0].DueDate)
	assert.Len(t, f.notifier.EventsOfKind(entity.EventDebtCreated), 1)

	// Devolución parcial: de las 8 entregadas vuelven 5, faltante de 3.
	returned, err := f.uc.RecordReturn(ctx, req.ID, "op-1", dto.RecordReturnRequest{
		Items: []dto.ReturnItem{{ItemID: itemID, Quantity: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusReturned, returned.Status)

	got, err = f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(17)), "las 5 devueltas reingresan")

	// Segunda deuda por faltante de devolución: 3 × 25000. La suma de ambas
	// (2+3=5) nunca excede lo solicitado (10).
	debts, _, err = f.repos.Debts.List(ctx, repository.DebtFilter{RequestID: req.ID})
	require.NoError(t, err)
	require.Len(t, debts, 2)
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.TotalAmount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(125000)))
	maxDebt := decimal.NewFromInt(10).Mul(decimal.NewFromInt(25000))
	assert.True(t, total.LessThanOrEqual(maxDebt))
}

func TestRecordDelivery_DesviacionDePesoSoloMarca(t *testing.T) {
	f := newFixture(t)
	unitWeight := decimal.NewFromFloat(1.0)
	p := f.seedProduct(t, "Varilla 3/8", 20, 12000, &unitWeight)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 10))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)

	// Peso esperado 10.0, medido 12.0: 20% de desviación contra 5% tolerado.
	weight := decimal.NewFromFloat(12.0)
	delivered, err := f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{
		Items: []dto.DeliveryItem{{ItemID: req.Items[0].ID, Quantity: decimal.NewFromInt(10), Weight: &weight}},
	})
	require.NoError(t, err)

	assert.True(t, delivered.Items[0].ReviewFlag, "la desviación marca el ítem para revisión")
	assert.Len(t, f.notifier.EventsOfKind(entity.EventWeightDeviation), 1)

	// La desviación de peso por sí sola no genera deuda.
	debts, _, err := f.repos.Debts.List(ctx, repository.DebtFilter{RequestID: req.ID})
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestRecordDelivery_PesoDentroDeTolerancia(t *testing.T) {
	f := newFixture(t)
	unitWeight := decimal.NewFromFloat(1.0)
	p := f.seedProduct(t, "Varilla 3/8", 20, 12000, &unitWeight)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 10))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)

	// 10.3 sobre 10.0 esperado: 3% < 5% tolerado.
	weight := decimal.NewFromFloat(10.3)
	delivered, err := f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{
		Items: []dto.DeliveryItem{{ItemID: req.Items[0].ID, Quantity: decimal.NewFromInt(10), Weight: &weight}},
	})
	require.NoError(t, err)
	assert.False(t, delivered.Items[0].ReviewFlag)
	assert.Empty(t, f.notifier.EventsOfKind(entity.EventWeightDeviation))
}

func TestCancel_UsuarioSoloSusPendientes(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 2))

	// Otro usuario no puede cancelarla.
	_, err := f.uc.Cancel(ctx, req.ID, "user-2", RoleUser, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// El dueño sí.
	cancelled, err := f.uc.Cancel(ctx, req.ID, "user-1", RoleUser, "ya no la necesito")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCancelled, cancelled.Status)

	// Terminal: nada más es posible.
	_, err = f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_AprobadaLiberaApartado(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 4))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)

	// El dueño también puede desistir de una solicitud ya aprobada.
	cancelled, err := f.uc.Cancel(ctx, req.ID, "user-1", RoleUser, "ya no la necesito")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCancelled, cancelled.Status)

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.IsZero(), "cancelar libera el apartado")
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(10)))
}

func TestCancel_UsuarioNoCancelaEnPreparacion(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 4))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)

	// Con la preparación iniciada solo el operador puede cancelar.
	_, err = f.uc.Cancel(ctx, req.ID, "user-1", RoleUser, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Cancel(ctx, req.ID, "op-1", RoleOperator, "material requerido en otra obra")
	require.NoError(t, err)

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.IsZero(), "cancelar libera el apartado")
}

func TestCancel_EntregadaNoSePuede(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 2))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)
	_, err = f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{})
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, req.ID, "admin-1", RoleAdmin, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecordDelivery_RepetidaSeRechaza(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 3))
	_, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)
	_, err = f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{})
	require.NoError(t, err)

	// Registrar la misma entrega otra vez no descuenta inventario dos veces.
	_, err = f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(7)), "una sola salida de 3")
	assert.True(t, got.ReservedQuantity.IsZero())
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	p1 := f.seedProduct(t, "Taladro", 10, 80000, nil)
	p2 := f.seedProduct(t, "Lija", 2, 1500, nil)
	ctx := context.Background()

	resp, err := f.uc.CheckAvailability(ctx, []dto.CreateRequestItem{
		item(p1.ID, 5), item(p2.ID, 5),
	})
	require.NoError(t, err)
	assert.False(t, resp.Fulfillable)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].Fulfills)
	assert.False(t, resp.Items[1].Fulfills)
}

func TestGetYList_AislamientoPorUsuario(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req1 := f.submit(t, "user-1", item(p.ID, 1))
	f.submit(t, "user-2", item(p.ID, 1))

	// user-2 no ve la solicitud de user-1.
	_, err := f.uc.Get(ctx, req1.ID, "user-2", RoleUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// El operador sí.
	_, err = f.uc.Get(ctx, req1.ID, "op-1", RoleOperator)
	require.NoError(t, err)

	// El listado de un usuario queda forzado a sus solicitudes.
	list, total, err := f.uc.List(ctx, "user-1", RoleUser, repository.RequestFilter{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "user-1", list[0].UserID)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	f.submit(t, "user-1", item(p.ID, 1))
	req2 := f.submit(t, "user-1", item(p.ID, 1))
	_, err := f.uc.Approve(ctx, req2.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)

	stats, err := f.uc.Statistics(ctx, "user-1", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[entity.RequestStatusPending])
	assert.Equal(t, 1, stats.ByStatus[entity.RequestStatusApproved])
}

func TestDeliveryNote_SoloTrasEntrega(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Taladro", 10, 80000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 2))

	_, err := f.uc.DeliveryNote(ctx, req.ID, "user-1", RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sin entrega no hay acta")

	_, err = f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{})
	require.NoError(t, err)
	_, err = f.uc.BeginCollection(ctx, req.ID, "op-1")
	require.NoError(t, err)
	_, err = f.uc.RecordDelivery(ctx, req.ID, "op-1", dto.RecordDeliveryRequest{})
	require.NoError(t, err)

	data, err := f.uc.DeliveryNote(ctx, req.ID, "user-1", RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestApprove_CantidadParcial(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Cemento", 20, 25000, nil)
	ctx := context.Background()

	req := f.submit(t, "user-1", item(p.ID, 10))
	approved, err := f.uc.Approve(ctx, req.ID, "op-1", dto.ApproveRequestRequest{
		Items: []dto.ApproveItem{{ItemID: req.Items[0].ID, Quantity: decimal.NewFromInt(6)}},
	})
	require.NoError(t, err)
	assert.True(t, approved.Items[0].ApprovedQty.Equal(decimal.NewFromInt(6)))

	got, err := f.repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.Equal(decimal.NewFromInt(6)), "se aparta lo aprobado, no lo solicitado")

	// Aprobar por encima de lo solicitado es inválido.
	req2 := f.submit(t, "user-1", item(p.ID, 3))
	_, err = f.uc.Approve(ctx, req2.ID, "op-1", dto.ApproveRequestRequest{
		Items: []dto.ApproveItem{{ItemID: req2.Items[0].ID, Quantity: decimal.NewFromInt(4)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
