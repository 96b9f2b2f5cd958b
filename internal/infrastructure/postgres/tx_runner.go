package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
)

// TxRunner ejecuta funciones de aplicación dentro de una transacción pgx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el ejecutor transaccional.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run abre una transacción, arma el bundle de repositorios ligados a ella y
// ejecuta fn. Error de fn = rollback; nil = commit.
func (t *TxRunner) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("no se pudo abrir la transacción: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NewRepos arma el bundle de repositorios sobre el Querier dado (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Products:     NewProductRepository(q),
		Transactions: NewInventoryTransactionRepository(q),
		Requests:     NewRequestRepository(q),
		Debts:        NewDebtRepository(q),
	}
}
