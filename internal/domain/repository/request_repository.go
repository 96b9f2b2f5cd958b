package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// RequestFilter acota los listados de solicitudes.
type RequestFilter struct {
	UserID string
	Status string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// RequestStatistics resume solicitudes por estado.
type RequestStatistics struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// RequestRepository es el puerto de persistencia de solicitudes y sus ítems.
type RequestRepository interface {
	// Create persiste la solicitud con todos sus ítems.
	Create(ctx context.Context, r *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	// GetForUpdate obtiene la solicitud bloqueando la fila durante la
	// transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Request, error)
	GetByNumber(ctx context.Context, number string) (*entity.Request, error)
	List(ctx context.Context, f RequestFilter) ([]*entity.Request, int, error)
	// UpdateStatus persiste el estado y las fechas de hito de la solicitud.
	UpdateStatus(ctx context.Context, r *entity.Request) error
	// UpdateItem persiste la cadena de cantidades de un ítem.
	UpdateItem(ctx context.Context, item *entity.RequestItem) error
	Statistics(ctx context.Context, userID string) (*RequestStatistics, error)
}
