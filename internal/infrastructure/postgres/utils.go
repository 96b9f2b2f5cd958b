package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// mapError traduce los errores de pgx a los sentinelas del dominio.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return domain.ErrDuplicate
		case "23514": // check_violation (stock o reservado fuera de rango)
			return domain.ErrInsufficientStock
		}
	}
	return err
}

// mapErrorNoRows es el error para un UPDATE que no afectó filas.
func mapErrorNoRows() error {
	return domain.ErrNotFound
}
