package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema crea las tablas e índices si no existen. Es idempotente y se
// ejecuta en cada arranque.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("no se pudo crear el esquema: %w", err)
	}
	return nil
}
