package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

func TestCanTransition_CicloCompleto(t *testing.T) {
	casos := []struct {
		from, to string
		ok       bool
	}{
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusDelivered, false},
		{RequestStatusApproved, RequestStatusCollecting, true},
		{RequestStatusApproved, RequestStatusCancelled, true},
		{RequestStatusApproved, RequestStatusReturned, false},
		{RequestStatusCollecting, RequestStatusDelivered, true},
		{RequestStatusCollecting, RequestStatusCancelled, true},
		{RequestStatusDelivered, RequestStatusReturned, true},
		{RequestStatusDelivered, RequestStatusCancelled, false},
		{RequestStatusReturned, RequestStatusPending, false},
		{RequestStatusCancelled, RequestStatusApproved, false},
	}
	for _, c := range casos {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(RequestStatusReturned))
	assert.True(t, IsTerminalStatus(RequestStatusCancelled))
	assert.False(t, IsTerminalStatus(RequestStatusPending))
	assert.False(t, IsTerminalStatus(RequestStatusDelivered))
}

func TestRequestItem_CadenaDeEtapas(t *testing.T) {
	now := time.Now()
	it, err := NewRequestItem("it-1", "req-1", "prod-1", decimal.NewFromInt(10), now)
	require.NoError(t, err)
	assert.Equal(t, StageRequested, it.Stage)

	// No se puede entregar antes de aprobar.
	err = it.Deliver(decimal.NewFromInt(5), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Aprobar más de lo solicitado es inválido.
	err = it.Approve(decimal.NewFromInt(11))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, it.Approve(decimal.NewFromInt(8)))
	assert.Equal(t, StageApproved, it.Stage)

	// Doble aprobación es una transición inválida.
	err = it.Approve(decimal.NewFromInt(8))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Entregar más de lo aprobado es inválido.
	err = it.Deliver(decimal.NewFromInt(9), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	peso := decimal.NewFromFloat(4.2)
	require.NoError(t, it.Deliver(decimal.NewFromInt(8), &peso))
	assert.Equal(t, StageDelivered, it.Stage)
	require.NotNil(t, it.DeliveredWeight)
	assert.True(t, it.DeliveredWeight.Equal(peso))

	// Devolver más de lo entregado es inválido.
	err = it.Return(decimal.NewFromInt(9), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, it.Return(decimal.NewFromInt(6), nil))
	assert.Equal(t, StageReturned, it.Stage)
	assert.True(t, it.ReturnedQty.Equal(decimal.NewFromInt(6)))
}

func TestNewRequestItem_CantidadNoPositiva(t *testing.T) {
	_, err := NewRequestItem("it-1", "req-1", "prod-1", decimal.Zero, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewRequestItem("it-1", "req-1", "prod-1", decimal.NewFromInt(-3), time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDebt_Resolve(t *testing.T) {
	now := time.Now()
	d := &Debt{
		ID:          "debt-1",
		Status:      DebtStatusPending,
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromFloat(15.5),
		TotalAmount: decimal.NewFromFloat(31),
	}

	err := d.Resolve("cerrada", "admin-1", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "resolución desconocida debe rechazarse")

	require.NoError(t, d.Resolve(DebtStatusPaid, "admin-1", now))
	assert.Equal(t, DebtStatusPaid, d.Status)
	require.NotNil(t, d.ResolvedBy)
	assert.Equal(t, "admin-1", *d.ResolvedBy)

	// Segunda resolución, aun con otro estado, debe fallar.
	err = d.Resolve(DebtStatusWaived, "admin-2", now)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.Equal(t, DebtStatusPaid, d.Status, "la primera resolución no debe sobrescribirse")
}

func TestInventoryTransaction_Deltas(t *testing.T) {
	casos := []struct {
		tipo     string
		qty      int64
		balance  int64
		reserved int64
	}{
		{TransactionTypeIn, 10, 10, 0},
		{TransactionTypeOut, 4, -4, 0},
		{TransactionTypeReturn, 3, 3, 0},
		{TransactionTypeAdjustment, -2, -2, 0},
		{TransactionTypeReserve, 5, 0, 5},
		{TransactionTypeRelease, 5, 0, -5},
	}
	for _, c := range casos {
		tx := &InventoryTransaction{Type: c.tipo, Quantity: decimal.NewFromInt(c.qty)}
		assert.True(t, tx.BalanceDelta().Equal(decimal.NewFromInt(c.balance)), "balance %s", c.tipo)
		assert.True(t, tx.ReservedDelta().Equal(decimal.NewFromInt(c.reserved)), "reservado %s", c.tipo)
	}
}

func TestProduct_Available(t *testing.T) {
	p := &Product{
		StockQuantity:    decimal.NewFromInt(10),
		ReservedQuantity: decimal.NewFromInt(4),
		MinimumStock:     decimal.NewFromInt(5),
	}
	assert.True(t, p.Available().Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "in_stock", p.StockStatus())

	p.ReservedQuantity = decimal.NewFromInt(10)
	assert.True(t, p.Available().IsZero())
}
