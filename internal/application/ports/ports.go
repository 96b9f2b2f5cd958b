// Package ports define los contratos entre la capa de aplicación y la
// infraestructura: el agrupador de repositorios, el ejecutor transaccional
// y los adaptadores de salida (notificador, generador de PDF).
package ports

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Repos agrupa los repositorios ligados a una misma conexión o transacción.
type Repos struct {
	Products     repository.ProductRepository
	Transactions repository.InventoryTransactionRepository
	Requests     repository.RequestRepository
	Debts        repository.DebtRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si fn devuelve error la
// transacción se revierte; si devuelve nil se confirma. Los repositorios del
// bundle recibido operan sobre esa transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Notifier publica eventos de dominio a los consumidores externos.
// La publicación es best-effort: un fallo se registra pero nunca propaga
// error a la operación de origen.
type Notifier interface {
	Publish(ctx context.Context, ev entity.Event)
}

// DeliveryNoteGenerator produce el acta de entrega en PDF de una solicitud.
type DeliveryNoteGenerator interface {
	Generate(ctx context.Context, req *entity.Request, products map[string]*entity.Product) ([]byte, error)
}
