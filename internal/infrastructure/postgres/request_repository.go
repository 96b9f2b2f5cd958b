package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RequestRepository implementa repository.RequestRepository sobre PostgreSQL.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository construye el repositorio de solicitudes.
func NewRequestRepository(q Querier) *RequestRepository {
	return &RequestRepository{q: q}
}

const requestColumns = `id, user_id, request_number, status, requested_date,
	requested_time, estimated_usage_period, supervising_instructor, purpose,
	collection_date, delivery_date, return_date, notes, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*entity.Request, error) {
	var r entity.Request
	err := row.Scan(
		&r.ID, &r.UserID, &r.RequestNumber, &r.Status, &r.RequestedDate,
		&r.RequestedTime, &r.EstimatedUsagePeriod, &r.SupervisingInstructor, &r.Purpose,
		&r.CollectionDate, &r.DeliveryDate, &r.ReturnDate, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

// Create inserta la solicitud con todos sus ítems.
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO requests (id, user_id, request_number, status, requested_date,
			requested_time, estimated_usage_period, supervising_instructor, purpose,
			collection_date, delivery_date, return_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		req.ID, req.UserID, req.RequestNumber, req.Status, req.RequestedDate,
		req.RequestedTime, req.EstimatedUsagePeriod, req.SupervisingInstructor, req.Purpose,
		req.CollectionDate, req.DeliveryDate, req.ReturnDate, req.Notes, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	for _, item := range req.Items {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO request_items (id, request_id, product_id, stage,
				requested_qty, approved_qty, delivered_qty, delivered_weight,
				returned_qty, returned_weight, review_flag, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			item.ID, item.RequestID, item.ProductID, item.Stage,
			item.RequestedQty, item.ApprovedQty, item.DeliveredQty, item.DeliveredWeight,
			item.ReturnedQty, item.ReturnedWeight, item.ReviewFlag, item.CreatedAt,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *RequestRepository) loadItems(ctx context.Context, req *entity.Request) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, product_id, stage, requested_qty, approved_qty,
			delivered_qty, delivered_weight, returned_qty, returned_weight,
			review_flag, created_at
		FROM request_items
		WHERE request_id = $1
		ORDER BY created_at, id`, req.ID)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.RequestItem
		if err := rows.Scan(
			&item.ID, &item.RequestID, &item.ProductID, &item.Stage,
			&item.RequestedQty, &item.ApprovedQty, &item.DeliveredQty, &item.DeliveredWeight,
			&item.ReturnedQty, &item.ReturnedWeight, &item.ReviewFlag, &item.CreatedAt,
		); err != nil {
			return mapError(err)
		}
		req.Items = append(req.Items, &item)
	}
	return mapError(rows.Err())
}

// GetByID obtiene la solicitud con sus ítems.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetForUpdate obtiene la solicitud bloqueando su fila hasta el fin de la
// transacción.
func (r *RequestRepository) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetByNumber obtiene la solicitud por su consecutivo.
func (r *RequestRepository) GetByNumber(ctx context.Context, number string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE request_number = $1`, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List devuelve solicitudes filtradas, de la más reciente a la más antigua,
// con el total sin paginar.
func (r *RequestRepository) List(ctx context.Context, f repository.RequestFilter) ([]*entity.Request, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != "" {
		conds = append(conds, "user_id = "+arg(f.UserID))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.Since != nil {
		conds = append(conds, "created_at >= "+arg(*f.Since))
	}
	if f.Until != nil {
		conds = append(conds, "created_at <= "+arg(*f.Until))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + requestColumns + ` FROM requests` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var requests []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}

	for _, req := range requests {
		if err := r.loadItems(ctx, req); err != nil {
			return nil, 0, err
		}
	}
	return requests, total, nil
}

// UpdateStatus persiste el estado y las fechas de hito.
func (r *RequestRepository) UpdateStatus(ctx context.Context, req *entity.Request) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE requests
		SET status = $2, collection_date = $3, delivery_date = $4,
			return_date = $5, notes = $6, updated_at = $7
		WHERE id = $1`,
		req.ID, req.Status, req.CollectionDate, req.DeliveryDate,
		req.ReturnDate, req.Notes, req.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}

// UpdateItem persiste la cadena de cantidades del ítem.
func (r *RequestRepository) UpdateItem(ctx context.Context, item *entity.RequestItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE request_items
		SET stage = $2, approved_qty = $3, delivered_qty = $4, delivered_weight = $5,
			returned_qty = $6, returned_weight = $7, review_flag = $8
		WHERE id = $1`,
		item.ID, item.Stage, item.ApprovedQty, item.DeliveredQty, item.DeliveredWeight,
		item.ReturnedQty, item.ReturnedWeight, item.ReviewFlag,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapErrorNoRows()
	}
	return nil
}

// Statistics resume solicitudes por estado, opcionalmente de un solo usuario.
func (r *RequestRepository) Statistics(ctx context.Context, userID string) (*repository.RequestStatistics, error) {
	query := `SELECT status, COUNT(*) FROM requests`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` GROUP BY status`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	stats := &repository.RequestStatistics{ByStatus: make(map[string]int)}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, mapError(err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, mapError(rows.Err())
}
