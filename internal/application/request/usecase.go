// Package request implementa el ciclo de vida de las solicitudes de
// materiales: creación, aprobación con apartado de stock, entrega, devolución
// y cancelación, con conciliación de faltantes y pesos en cada cierre.
package request

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
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

// Roles reconocidos por el middleware de autenticación.
const (
	RoleUser     = "user"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// UseCase expone las operaciones del ciclo de vida de solicitudes.
type UseCase struct {
	repos      ports.Repos
	tx         ports.TxRunner
	ledger     *ledger.UseCase
	reconciler *Reconciler
	notifier   ports.Notifier
	pdf        ports.DeliveryNoteGenerator
	log        zerolog.Logger
}

// NewUseCase construye el caso de uso de solicitudes.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, lg *ledger.UseCase, rc *Reconciler, notifier ports.Notifier, pdf ports.DeliveryNoteGenerator, log zerolog.Logger) *UseCase {
	return &UseCase{repos: repos, tx: tx, ledger: lg, reconciler: rc, notifier: notifier, pdf: pdf, log: log}
}

// Submit crea una solicitud en estado pending con sus ítems. No toca el
// inventario: el apartado ocurre recién en la aprobación.
func (uc *UseCase) Submit(ctx context.Context, userID string, in dto.CreateRequestRequest) (*entity.Request, error) {
	if userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	reqDate, err := time.Parse("2006-01-02", in.RequestedDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	req := &entity.Request{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Status:                entity.RequestStatusPending,
		RequestedDate:         reqDate,
		RequestedTime:         in.RequestedTime,
		EstimatedUsagePeriod:  in.EstimatedUsagePeriod,
		SupervisingInstructor: in.SupervisingInstructor,
		Purpose:               in.Purpose,
		Notes:                 in.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	for _, line := range in.Items {
		item, err := entity.NewRequestItem(uuid.NewString(), req.ID, line.ProductID, line.Quantity, now)
		if err != nil {
			return nil, err
		}
		req.Items = append(req.Items, item)
	}

	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		for _, item := range req.Items {
			p, err := r.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return domain.ErrInvalidInput
			}
		}
		number, err := uc.nextRequestNumber(ctx, r, now)
		if err != nil {
			return err
		}
		req.RequestNumber = number
		return r.Requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, entity.NewEvent(entity.EventRequestCreated, req.ID, map[string]any{
		"request_id":     req.ID,
		"request_number": req.RequestNumber,
		"user_id":        req.UserID,
		"item_count":     len(req.Items),
	}, now))
	uc.log.Info().Str("request_id", req.ID).Str("request_number", req.RequestNumber).Msg("solicitud creada")
	return req, nil
}

// nextRequestNumber genera un consecutivo REQ-YYYYMMDD-XXXX único, con
// reintentos ante colisión del sufijo aleatorio.
func (uc *UseCase) nextRequestNumber(ctx context.Context, r ports.Repos, now time.Time) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		candidate := fmt.Sprintf("REQ-%s-%04d", now.Format("20060102"), rand.Intn(10000))
		_, err := r.Requests.GetByNumber(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", domain.ErrDuplicate
}

// Approve pasa la solicitud de pending a approved fijando cantidades
// aprobadas y apartando stock por cada ítem. Si algún producto no alcanza,
// toda la aprobación se revierte.
func (uc *UseCase) Approve(ctx context.Context, requestID, operatorID string, in dto.ApproveRequestRequest) (*entity.Request, error) {
	overrides := make(map[string]decimal.Decimal, len(in.Items))
	for _, it := range in.Items {
		overrides[it.ItemID] = it.Quantity
	}

	var (
		req    *entity.Request
		events []entity.Event
	)
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !entity.CanTransition(req.Status, entity.RequestStatusApproved) {
			return domain.ErrInvalidTransition
		}

		for _, item := range req.Items {
			qty := item.RequestedQty
			if override, ok := overrides[item.ID]; ok {
				qty = override
			}
			if err := item.Approve(qty); err != nil {
				return err
			}
			if qty.GreaterThan(decimal.Zero) {
				evs, err := uc.ledger.ReserveTx(ctx, r, item.ProductID, qty, req.ID, operatorID, now)
				if err != nil {
					return err
				}
				events = append(events, evs...)
			}
			if err := r.Requests.UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		req.Status = entity.RequestStatusApproved
		if in.Notes != "" {
			req.Notes = in.Notes
		}
		req.UpdatedAt = now
		return r.Requests.UpdateStatus(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	events = append(events, uc.statusEvent(req, entity.RequestStatusPending, now))
	uc.publish(ctx, events)
	uc.log.Info().Str("request_id", req.ID).Str("operator_id", operatorID).Msg("solicitud aprobada")
	return req, nil
}

// BeginCollection marca la solicitud como en recolección (el usuario está
// retirando los materiales del almacén).
func (uc *UseCase) BeginCollection(ctx context.Context, requestID, operatorID string) (*entity.Request, error) {
	var req *entity.Request
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !entity.CanTransition(req.Status, entity.RequestStatusCollecting) {
			return domain.ErrInvalidTransition
		}
		req.Status = entity.RequestStatusCollecting
		req.CollectionDate = &now
		req.UpdatedAt = now
		return r.Requests.UpdateStatus(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, uc.statusEvent(req, entity.RequestStatusApproved, now))
	return req, nil
}

// RecordDelivery cierra la entrega: fija cantidades y pesos entregados,
// libera los apartados, descuenta del saldo lo efectivamente entregado y
// concilia faltantes y desviaciones de peso.
func (uc *UseCase) RecordDelivery(ctx context.Context, requestID, operatorID string, in dto.RecordDeliveryRequest) (*entity.Request, error) {
	deliveries := make(map[string]dto.DeliveryItem, len(in.Items))
	for _, it := range in.Items {
		deliveries[it.ItemID] = it
	}

	var (
		req    *entity.Request
		events []entity.Event
	)
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !entity.CanTransition(req.Status, entity.RequestStatusDelivered) {
			return domain.ErrInvalidTransition
		}

		for _, item := range req.Items {
			line, ok := deliveries[item.ID]
			if !ok {
				// Ítem no reportado: se entrega completo sin peso medido.
				line = dto.DeliveryItem{Quantity: item.ApprovedQty}
			}
			if err := item.Deliver(line.Quantity, line.Weight); err != nil {
				return err
			}

			p, err := r.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}

			// El apartado se libera completo; al saldo solo sale lo entregado.
			if item.ApprovedQty.GreaterThan(decimal.Zero) {
				if err := uc.ledger.ReleaseTx(ctx, r, item.ProductID, item.ApprovedQty, req.ID, operatorID, now); err != nil {
					return err
				}
			}
			if item.DeliveredQty.GreaterThan(decimal.Zero) {
				_, evs, err := uc.ledger.ApplyTx(ctx, r, ledger.ApplyInput{
					ProductID:     item.ProductID,
					Type:          entity.TransactionTypeOut,
					Quantity:      item.DeliveredQty,
					ReferenceType: entity.ReferenceRequest,
					ReferenceID:   req.ID,
					PerformedBy:   operatorID,
				}, now)
				if err != nil {
					return err
				}
				events = append(events, evs...)
			}

			debt, evs, err := uc.reconcileAndPersist(ctx, r, req, item, p, now, uc.reconciler.ReconcileDelivery)
			if err != nil {
				return err
			}
			events = append(events, evs...)
			if debt != nil {
				events = append(events, debtCreatedEvent(debt, now))
			}

			if err := r.Requests.UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		req.Status = entity.RequestStatusDelivered
		req.DeliveryDate = &now
		if in.Notes != "" {
			req.Notes = in.Notes
		}
		req.UpdatedAt = now
		return r.Requests.UpdateStatus(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	events = append(events, uc.statusEvent(req, entity.RequestStatusCollecting, now))
	uc.publish(ctx, events)
	uc.log.Info().Str("request_id", req.ID).Msg("entrega registrada")
	return req, nil
}

// RecordReturn cierra la devolución: fija cantidades y pesos devueltos,
// reingresa al saldo lo devuelto y concilia el tramo entregado-devuelto.
func (uc *UseCase) RecordReturn(ctx context.Context, requestID, operatorID string, in dto.RecordReturnRequest) (*entity.Request, error) {
	returns := make(map[string]dto.ReturnItem, len(in.Items))
	for _, it := range in.Items {
		returns[it.ItemID] = it
	}

	var (
		req    *entity.Request
		events []entity.Event
	)
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !entity.CanTransition(req.Status, entity.RequestStatusReturned) {
			return domain.ErrInvalidTransition
		}

		for _, item := range req.Items {
			line, ok := returns[item.ID]
			if !ok {
				// Ítem no reportado: se da por devuelto completo sin peso.
				line = dto.ReturnItem{Quantity: item.DeliveredQty}
			}
			if err := item.Return(line.Quantity, line.Weight); err != nil {
				return err
			}

			p, err := r.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}

			if item.ReturnedQty.GreaterThan(decimal.Zero) {
				_, evs, err := uc.ledger.ApplyTx(ctx, r, ledger.ApplyInput{
					ProductID:     item.ProductID,
					Type:          entity.TransactionTypeReturn,
					Quantity:      item.ReturnedQty,
					ReferenceType: entity.ReferenceRequest,
					ReferenceID:   req.ID,
					PerformedBy:   operatorID,
				}, now)
				if err != nil {
					return err
				}
				events = append(events, evs...)
			}

			debt, evs, err := uc.reconcileAndPersist(ctx, r, req, item, p, now, uc.reconciler.ReconcileReturn)
			if err != nil {
				return err
			}
			events = append(events, evs...)
			if debt != nil {
				events = append(events, debtCreatedEvent(debt, now))
			}

			if err := r.Requests.UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		req.Status = entity.RequestStatusReturned
		req.ReturnDate = &now
		if in.Notes != "" {
			req.Notes = in.Notes
		}
		req.UpdatedAt = now
		return r.Requests.UpdateStatus(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	events = append(events, uc.statusEvent(req, entity.RequestStatusDelivered, now))
	uc.publish(ctx, events)
	uc.log.Info().Str("request_id", req.ID).Msg("devolución registrada")
	return req, nil
}

type reconcileFn func(*entity.Request, *entity.RequestItem, *entity.Product, time.Time) (*entity.Debt, []entity.Event)

func (uc *UseCase) reconcileAndPersist(ctx context.Context, r ports.Repos, req *entity.Request, item *entity.RequestItem, p *entity.Product, now time.Time, fn reconcileFn) (*entity.Debt, []entity.Event, error) {
	debt, events := fn(req, item, p, now)
	if debt != nil {
		if err := r.Debts.Create(ctx, debt); err != nil {
			return nil, nil, err
		}
	}
	return debt, events, nil
}

// Cancel cancela la solicitud. Un usuario solo puede cancelar sus propias
// solicitudes mientras estén pendientes o aprobadas; operadores y
// administradores pueden cancelar cualquier solicitud no terminal anterior a
// la entrega. En ambos casos se liberan los apartados si ya existían.
func (uc *UseCase) Cancel(ctx context.Context, requestID, actorID, role, reason string) (*entity.Request, error) {
	var req *entity.Request
	now := time.Now().UTC()
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if role == RoleUser {
			if req.UserID != actorID {
				return domain.ErrForbidden
			}
			// El dueño puede desistir hasta que comience la preparación.
			if req.Status != entity.RequestStatusPending && req.Status != entity.RequestStatusApproved {
				return domain.ErrForbidden
			}
		}
		if !entity.CanTransition(req.Status, entity.RequestStatusCancelled) {
			return domain.ErrInvalidTransition
		}

		// Con apartados vigentes (approved o collecting) hay que liberarlos.
		if req.Status == entity.RequestStatusApproved || req.Status == entity.RequestStatusCollecting {
			for _, item := range req.Items {
				if item.ApprovedQty.GreaterThan(decimal.Zero) {
					if err := uc.ledger.ReleaseTx(ctx, r, item.ProductID, item.ApprovedQty, req.ID, actorID, now); err != nil {
						return err
					}
				}
			}
		}

		req.Status = entity.RequestStatusCancelled
		if reason != "" {
			req.Notes = reason
		}
		req.UpdatedAt = now
		return r.Requests.UpdateStatus(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, entity.NewEvent(entity.EventRequestStatusChanged, req.ID, map[string]any{
		"request_id":     req.ID,
		"request_number": req.RequestNumber,
		"status":         entity.RequestStatusCancelled,
		"reason":         reason,
	}, now))
	uc.log.Info().Str("request_id", req.ID).Str("actor_id", actorID).Msg("solicitud cancelada")
	return req, nil
}

// CheckAvailability verifica sin reservar si el disponible actual cubre las
// cantidades pedidas. Es informativo: la garantía real la da la aprobación.
func (uc *UseCase) CheckAvailability(ctx context.Context, items []dto.CreateRequestItem) (*dto.AvailabilityResponse, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	resp := &dto.AvailabilityResponse{Fulfillable: true}
	for _, line := range items {
		p, err := uc.repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		available := p.Available()
		fulfills := available.GreaterThanOrEqual(line.Quantity)
		if !fulfills {
			resp.Fulfillable = false
		}
		resp.Items = append(resp.Items, dto.AvailabilityItem{
			ProductID: line.ProductID,
			Requested: line.Quantity,
			Available: available,
			Fulfills:  fulfills,
		})
	}
	return resp, nil
}

// Get devuelve la solicitud. Un usuario solo ve las suyas.
func (uc *UseCase) Get(ctx context.Context, requestID, actorID, role string) (*entity.Request, error) {
	req, err := uc.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if role == RoleUser && req.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// List devuelve solicitudes paginadas. A un usuario se le fuerza el filtro
// por su propio ID.
func (uc *UseCase) List(ctx context.Context, actorID, role string, f repository.RequestFilter) ([]*entity.Request, int, error) {
	if role == RoleUser {
		f.UserID = actorID
	}
	return uc.repos.Requests.List(ctx, f)
}

// Statistics resume solicitudes por estado. Para un usuario, solo las suyas.
func (uc *UseCase) Statistics(ctx context.Context, actorID, role string) (*repository.RequestStatistics, error) {
	userID := ""
	if role == RoleUser {
		userID = actorID
	}
	return uc.repos.Requests.Statistics(ctx, userID)
}

// DeliveryNote genera el acta de entrega en PDF de una solicitud ya
// entregada o devuelta.
func (uc *UseCase) DeliveryNote(ctx context.Context, requestID, actorID, role string) ([]byte, error) {
	req, err := uc.Get(ctx, requestID, actorID, role)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequestStatusDelivered && req.Status != entity.RequestStatusReturned {
		return nil, domain.ErrInvalidTransition
	}

	products := make(map[string]*entity.Product, len(req.Items))
	for _, item := range req.Items {
		p, err := uc.repos.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		products[item.ProductID] = p
	}
	return uc.pdf.Generate(ctx, req, products)
}

func (uc *UseCase) statusEvent(req *entity.Request, from string, now time.Time) entity.Event {
	return entity.NewEvent(entity.EventRequestStatusChanged, req.ID, map[string]any{
		"request_id":     req.ID,
		"request_number": req.RequestNumber,
		"from":           from,
		"status":         req.Status,
	}, now)
}

func debtCreatedEvent(d *entity.Debt, now time.Time) entity.Event {
	return entity.NewEvent(entity.EventDebtCreated, d.UserID, map[string]any{
		"debt_id":      d.ID,
		"user_id":      d.UserID,
		"product_id":   d.ProductID,
		"type":         d.Type,
		"total_amount": d.TotalAmount,
	}, now)
}

func (uc *UseCase) publish(ctx context.Context, events []entity.Event) {
	for _, ev := range events {
		uc.notifier.Publish(ctx, ev)
	}
}
